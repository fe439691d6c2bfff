package controllers

import (
	"strconv"

	"absensi_go/database"
	"absensi_go/middleware"
	"absensi_go/models"

	"github.com/gofiber/fiber/v2"
)

type DivisionController struct{}

// GetDivisions returns all divisions
func (dc *DivisionController) GetDivisions(c *fiber.Ctx) error {
	var divisions []models.Division

	query := database.DB.Model(&models.Division{})

	// Filter by active status if specified
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	if err := query.Order("name ASC").Find(&divisions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch divisions",
		})
	}

	return c.JSON(fiber.Map{
		"divisions": divisions,
		"total":     len(divisions),
	})
}

// GetDivision returns a specific division by ID
func (dc *DivisionController) GetDivision(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid division ID",
		})
	}

	var division models.Division
	if err := database.DB.First(&division, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Division not found",
		})
	}

	return c.JSON(fiber.Map{
		"division": division,
	})
}

// CreateDivision creates a new division
func (dc *DivisionController) CreateDivision(c *fiber.Ctx) error {
	var division models.Division
	if err := c.BodyParser(&division); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validate required fields
	if division.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	// Check if name already exists
	var existingDivision models.Division
	if err := database.DB.Where("name = ?", division.Name).First(&existingDivision).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Division name already exists",
		})
	}

	division.Active = true

	if err := database.DB.Create(&division).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create division",
		})
	}

	middleware.LogActivity(c, "CREATE", "divisions", division.ID, division)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Division created successfully",
		"division": division,
	})
}

// UpdateDivision updates an existing division
func (dc *DivisionController) UpdateDivision(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid division ID",
		})
	}

	var division models.Division
	if err := database.DB.First(&division, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Division not found",
		})
	}

	var updateData struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Check if name already exists (if changing)
	if updateData.Name != "" && updateData.Name != division.Name {
		var existingDivision models.Division
		if err := database.DB.Where("name = ? AND id != ?", updateData.Name, division.ID).First(&existingDivision).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Division name already exists",
			})
		}
	}

	changes := map[string]interface{}{}
	if updateData.Name != "" {
		changes["name"] = updateData.Name
	}
	if updateData.Description != "" {
		changes["description"] = updateData.Description
	}
	if updateData.Active != nil {
		changes["active"] = *updateData.Active
	}

	if err := database.DB.Model(&division).Updates(changes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update division",
		})
	}

	middleware.LogActivity(c, "UPDATE", "divisions", division.ID, changes)

	return c.JSON(fiber.Map{
		"message":  "Division updated successfully",
		"division": division,
	})
}

// DeleteDivision deletes a division
func (dc *DivisionController) DeleteDivision(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid division ID",
		})
	}

	var division models.Division
	if err := database.DB.First(&division, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Division not found",
		})
	}

	// Check if division has associated users
	var userCount int64
	database.DB.Model(&models.User{}).Where("division_id = ?", division.ID).Count(&userCount)
	if userCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete division with associated users",
		})
	}

	// Hard delete so the name can be reused
	if err := database.DB.Unscoped().Delete(&division).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete division",
		})
	}

	middleware.LogActivity(c, "DELETE", "divisions", division.ID, division)

	return c.JSON(fiber.Map{
		"message": "Division deleted successfully",
	})
}
