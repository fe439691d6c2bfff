package controllers

import (
	"strconv"

	"absensi_go/database"
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/utils"

	"github.com/gofiber/fiber/v2"
)

type SessionTypeController struct{}

// GetSessionTypes returns all session types ordered for display
func (stc *SessionTypeController) GetSessionTypes(c *fiber.Ctx) error {
	var sessionTypes []models.SessionType

	query := database.DB.Model(&models.SessionType{})

	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	if err := query.Order("display_order ASC, name ASC").Find(&sessionTypes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch session types",
		})
	}

	return c.JSON(fiber.Map{
		"session_types": sessionTypes,
		"total":         len(sessionTypes),
	})
}

// GetSessionType returns a specific session type by ID
func (stc *SessionTypeController) GetSessionType(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session type ID",
		})
	}

	var sessionType models.SessionType
	if err := database.DB.First(&sessionType, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session type not found",
		})
	}

	return c.JSON(fiber.Map{
		"session_type": sessionType,
	})
}

// CreateSessionType creates a new session type
func (stc *SessionTypeController) CreateSessionType(c *fiber.Ctx) error {
	var sessionType models.SessionType
	if err := c.BodyParser(&sessionType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if sessionType.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	if !utils.IsValidTimeOfDay(sessionType.StartTime) || !utils.IsValidTimeOfDay(sessionType.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start/end time must be in HH:MM format",
		})
	}

	if sessionType.DisplayOrder == 0 {
		sessionType.DisplayOrder = 1
	}
	sessionType.Active = true

	if err := database.DB.Create(&sessionType).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session type",
		})
	}

	middleware.LogActivity(c, "CREATE", "session-types", sessionType.ID, sessionType)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Session type created successfully",
		"session_type": sessionType,
	})
}

// UpdateSessionType updates an existing session type
func (stc *SessionTypeController) UpdateSessionType(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session type ID",
		})
	}

	var sessionType models.SessionType
	if err := database.DB.First(&sessionType, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session type not found",
		})
	}

	var updateData struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
		DisplayOrder *int   `json:"display_order"`
		Active       *bool  `json:"active"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !utils.IsValidTimeOfDay(updateData.StartTime) || !utils.IsValidTimeOfDay(updateData.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start/end time must be in HH:MM format",
		})
	}

	changes := map[string]interface{}{}
	if updateData.Name != "" {
		changes["name"] = updateData.Name
	}
	if updateData.Description != "" {
		changes["description"] = updateData.Description
	}
	if updateData.StartTime != "" {
		changes["start_time"] = updateData.StartTime
	}
	if updateData.EndTime != "" {
		changes["end_time"] = updateData.EndTime
	}
	if updateData.DisplayOrder != nil {
		changes["display_order"] = *updateData.DisplayOrder
	}
	if updateData.Active != nil {
		changes["active"] = *updateData.Active
	}

	if err := database.DB.Model(&sessionType).Updates(changes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update session type",
		})
	}

	middleware.LogActivity(c, "UPDATE", "session-types", sessionType.ID, changes)

	return c.JSON(fiber.Map{
		"message":      "Session type updated successfully",
		"session_type": sessionType,
	})
}

// DeleteSessionType deletes a session type
func (stc *SessionTypeController) DeleteSessionType(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session type ID",
		})
	}

	var sessionType models.SessionType
	if err := database.DB.First(&sessionType, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session type not found",
		})
	}

	// Check if session type has associated sessions
	var sessionCount int64
	database.DB.Model(&models.Session{}).Where("session_type_id = ?", sessionType.ID).Count(&sessionCount)
	if sessionCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete session type with associated sessions",
		})
	}

	if err := database.DB.Delete(&sessionType).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete session type",
		})
	}

	middleware.LogActivity(c, "DELETE", "session-types", sessionType.ID, sessionType)

	return c.JSON(fiber.Map{
		"message": "Session type deleted successfully",
	})
}
