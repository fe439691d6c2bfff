package controllers

import (
	"strconv"

	"absensi_go/database"
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/utils"

	"github.com/gofiber/fiber/v2"
)

type BatchController struct{}

// GetBatches returns all batches
func (bc *BatchController) GetBatches(c *fiber.Ctx) error {
	var batches []models.Batch

	query := database.DB.Model(&models.Batch{})

	// Filter by active status if specified
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	// Filter by year if specified
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}

	if err := query.Order("year DESC, name ASC").Find(&batches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch batches",
		})
	}

	return c.JSON(fiber.Map{
		"batches": batches,
		"total":   len(batches),
	})
}

// GetBatch returns a specific batch by ID
func (bc *BatchController) GetBatch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch ID",
		})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}

	return c.JSON(fiber.Map{
		"batch": batch,
	})
}

// CreateBatch creates a new batch
func (bc *BatchController) CreateBatch(c *fiber.Ctx) error {
	var batch models.Batch
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validate required fields
	if batch.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	if !utils.IsValidYear(batch.Year) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Year must be between 2000 and 2100",
		})
	}

	// Check if (name, year) already exists
	var existingBatch models.Batch
	if err := database.DB.Where("name = ? AND year = ?", batch.Name, batch.Year).First(&existingBatch).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Batch with this name and year already exists",
		})
	}

	batch.Active = true

	if err := database.DB.Create(&batch).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create batch",
		})
	}

	middleware.LogActivity(c, "CREATE", "batches", batch.ID, batch)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Batch created successfully",
		"batch":   batch,
	})
}

// UpdateBatch updates an existing batch
func (bc *BatchController) UpdateBatch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch ID",
		})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}

	var updateData struct {
		Name   string `json:"name"`
		Year   *int   `json:"year"`
		Active *bool  `json:"active"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	name := batch.Name
	year := batch.Year
	if updateData.Name != "" {
		name = updateData.Name
	}
	if updateData.Year != nil {
		if !utils.IsValidYear(*updateData.Year) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Year must be between 2000 and 2100",
			})
		}
		year = *updateData.Year
	}

	// Check if (name, year) already exists (excluding self)
	if name != batch.Name || year != batch.Year {
		var existingBatch models.Batch
		if err := database.DB.Where("name = ? AND year = ? AND id != ?", name, year, batch.ID).First(&existingBatch).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Batch with this name and year already exists",
			})
		}
	}

	changes := map[string]interface{}{"name": name, "year": year}
	if updateData.Active != nil {
		changes["active"] = *updateData.Active
	}

	if err := database.DB.Model(&batch).Updates(changes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update batch",
		})
	}

	middleware.LogActivity(c, "UPDATE", "batches", batch.ID, changes)

	return c.JSON(fiber.Map{
		"message": "Batch updated successfully",
		"batch":   batch,
	})
}

// DeleteBatch deletes a batch
func (bc *BatchController) DeleteBatch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch ID",
		})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}

	// Check if batch has associated users
	var userCount int64
	database.DB.Model(&models.User{}).Where("batch_id = ?", batch.ID).Count(&userCount)
	if userCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete batch with associated users",
		})
	}

	// Hard delete so the (name, year) pair can be reused
	if err := database.DB.Unscoped().Delete(&batch).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete batch",
		})
	}

	middleware.LogActivity(c, "DELETE", "batches", batch.ID, batch)

	return c.JSON(fiber.Map{
		"message": "Batch deleted successfully",
	})
}
