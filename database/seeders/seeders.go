package seeders

import (
	"absensi_go/database"
	"absensi_go/models"
	"absensi_go/utils"
	"log"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedBatches()
	SeedDivisions()
	SeedSessionTypes()
	SeedUsers()

	log.Println("Database seeding completed successfully!")
}

// SeedBatches seeds the batches table
func SeedBatches() {
	var count int64
	database.DB.Model(&models.Batch{}).Count(&count)
	if count > 0 {
		log.Println("Batches already seeded, skipping...")
		return
	}

	batches := []models.Batch{
		{Name: "Angkatan 2024", Year: 2024, Active: true},
		{Name: "Angkatan 2025", Year: 2025, Active: true},
	}

	if err := database.DB.Create(&batches).Error; err != nil {
		log.Printf("Failed to seed batches: %v", err)
		return
	}
	log.Printf("Seeded %d batches", len(batches))
}

// SeedDivisions seeds the divisions table
func SeedDivisions() {
	var count int64
	database.DB.Model(&models.Division{}).Count(&count)
	if count > 0 {
		log.Println("Divisions already seeded, skipping...")
		return
	}

	divisions := []models.Division{
		{Name: "Tahfidz", Description: "Divisi hafalan Al-Quran", Active: true},
		{Name: "Bahasa", Description: "Divisi pengembangan bahasa", Active: true},
		{Name: "Kitab", Description: "Divisi kajian kitab kuning", Active: true},
	}

	if err := database.DB.Create(&divisions).Error; err != nil {
		log.Printf("Failed to seed divisions: %v", err)
		return
	}
	log.Printf("Seeded %d divisions", len(divisions))
}

// SeedSessionTypes seeds the session types table
func SeedSessionTypes() {
	var count int64
	database.DB.Model(&models.SessionType{}).Count(&count)
	if count > 0 {
		log.Println("Session types already seeded, skipping...")
		return
	}

	sessionTypes := []models.SessionType{
		{Name: "Kajian Subuh", Description: "Kajian setelah sholat subuh", StartTime: "05:00", EndTime: "06:00", DisplayOrder: 1, Active: true},
		{Name: "Madrasah Diniyah", Description: "Pembelajaran diniyah pagi", StartTime: "08:00", EndTime: "11:30", DisplayOrder: 2, Active: true},
		{Name: "Tahfidz Sore", Description: "Setoran hafalan sore", StartTime: "16:00", EndTime: "17:30", DisplayOrder: 3, Active: true},
		{Name: "Kajian Malam", Description: "Kajian kitab setelah isya", StartTime: "19:30", EndTime: "21:00", DisplayOrder: 4, Active: true},
	}

	if err := database.DB.Create(&sessionTypes).Error; err != nil {
		log.Printf("Failed to seed session types: %v", err)
		return
	}
	log.Printf("Seeded %d session types", len(sessionTypes))
}

// SeedUsers seeds the default admin account
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		log.Println("Admin user already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Failed to hash seed password: %v", err)
		return
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@absensi.local",
		Password: hashed,
		Role:     models.RoleAdmin,
		Active:   true,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded default admin user (admin@absensi.local)")
}
