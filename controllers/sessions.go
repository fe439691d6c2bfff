package controllers

import (
	"strconv"
	"time"

	"absensi_go/database"
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/services"
	"absensi_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionController struct{}

// GetSessions returns sessions with optional filters
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Session{})

	if startDate := c.Query("start_date"); startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate := c.Query("end_date"); endDate != "" {
		query = query.Where("date <= ?", endDate)
	}
	if batchID := c.Query("batch_id"); batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}
	if sessionTypeID := c.Query("session_type_id"); sessionTypeID != "" {
		query = query.Where("session_type_id = ?", sessionTypeID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var sessions []models.Session
	if err := query.Preload("SessionType").Preload("Batch").Preload("Division").
		Order("date DESC").Offset(offset).Limit(limit).Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetSession returns a specific session by ID
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.Preload("SessionType").Preload("Batch").Preload("Division").
		First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"session": session,
	})
}

// CreateSession creates a new session and bulk-generates default attendance
// rows for every santri in the batch.
func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	var req struct {
		Date          string `json:"date"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
		SessionTypeID uint   `json:"session_type_id"`
		BatchID       uint   `json:"batch_id"`
		DivisionID    *uint  `json:"division_id"`
		Notes         string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must be in YYYY-MM-DD format",
		})
	}
	if !utils.IsValidTimeOfDay(req.StartTime) || !utils.IsValidTimeOfDay(req.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start/end time must be in HH:MM format",
		})
	}

	var sessionType models.SessionType
	if err := database.DB.First(&sessionType, req.SessionTypeID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session type not found",
		})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, req.BatchID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}

	// Uniqueness on (date, session type, batch)
	var existing models.Session
	if err := database.DB.Where("date = ? AND session_type_id = ? AND batch_id = ?",
		date.Format("2006-01-02"), req.SessionTypeID, req.BatchID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session already exists for this date, session type and batch",
		})
	}

	// Default session times from the session type
	startTime := req.StartTime
	endTime := req.EndTime
	if startTime == "" {
		startTime = sessionType.StartTime
	}
	if endTime == "" {
		endTime = sessionType.EndTime
	}

	session := models.Session{
		Date:          date,
		StartTime:     startTime,
		EndTime:       endTime,
		SessionTypeID: req.SessionTypeID,
		BatchID:       req.BatchID,
		DivisionID:    req.DivisionID,
		Status:        models.SessionScheduled,
		Notes:         req.Notes,
	}

	var generated int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		n, err := services.GenerateSessionAttendance(tx, session.ID, session.BatchID)
		if err != nil {
			return err
		}
		generated = n
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	database.DB.Preload("SessionType").Preload("Batch").First(&session, session.ID)

	middleware.LogActivity(c, "CREATE", "sessions", session.ID, fiber.Map{
		"date":                 req.Date,
		"generated_attendance": generated,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":              "Session created successfully",
		"session":              session,
		"generated_attendance": generated,
	})
}

// UpdateSession partially updates a session. When the batch changes, existing
// attendance rows are dropped and regenerated for the new batch's santri.
func (sc *SessionController) UpdateSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var req struct {
		Date          string               `json:"date"`
		StartTime     string               `json:"start_time"`
		EndTime       string               `json:"end_time"`
		SessionTypeID *uint                `json:"session_type_id"`
		BatchID       *uint                `json:"batch_id"`
		DivisionID    *uint                `json:"division_id"`
		Status        models.SessionStatus `json:"status"`
		Notes         *string              `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date := session.Date
	if req.Date != "" {
		date, err = utils.ParseDate(req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Date must be in YYYY-MM-DD format",
			})
		}
	}
	if !utils.IsValidTimeOfDay(req.StartTime) || !utils.IsValidTimeOfDay(req.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start/end time must be in HH:MM format",
		})
	}
	if req.Status != "" && !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session status",
		})
	}

	sessionTypeID := session.SessionTypeID
	if req.SessionTypeID != nil {
		var sessionType models.SessionType
		if err := database.DB.First(&sessionType, *req.SessionTypeID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session type not found",
			})
		}
		sessionTypeID = *req.SessionTypeID
	}

	batchID := session.BatchID
	batchChanged := false
	if req.BatchID != nil && *req.BatchID != session.BatchID {
		var batch models.Batch
		if err := database.DB.First(&batch, *req.BatchID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Batch not found",
			})
		}
		batchID = *req.BatchID
		batchChanged = true
	}

	// Uniqueness on (date, session type, batch), excluding self
	var existing models.Session
	if err := database.DB.Where("date = ? AND session_type_id = ? AND batch_id = ? AND id != ?",
		date.Format("2006-01-02"), sessionTypeID, batchID, session.ID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session already exists for this date, session type and batch",
		})
	}

	changes := map[string]interface{}{
		"date":            date,
		"session_type_id": sessionTypeID,
		"batch_id":        batchID,
	}
	if req.StartTime != "" {
		changes["start_time"] = req.StartTime
	}
	if req.EndTime != "" {
		changes["end_time"] = req.EndTime
	}
	if req.DivisionID != nil {
		changes["division_id"] = *req.DivisionID
	}
	if req.Status != "" {
		changes["status"] = req.Status
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&session).Updates(changes).Error; err != nil {
			return err
		}
		if batchChanged {
			// Attendance rows belong to the old batch's santri; regenerate.
			if err := tx.Unscoped().Where("session_id = ?", session.ID).Delete(&models.Attendance{}).Error; err != nil {
				return err
			}
			if _, err := services.GenerateSessionAttendance(tx, session.ID, batchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update session",
		})
	}

	database.DB.Preload("SessionType").Preload("Batch").Preload("Division").First(&session, session.ID)

	middleware.LogActivity(c, "UPDATE", "sessions", session.ID, changes)

	return c.JSON(fiber.Map{
		"message": "Session updated successfully",
		"session": session,
	})
}

// DeleteSession deletes a session, removing its attendance rows first
func (sc *SessionController) DeleteSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	if err := services.DeleteSession(session.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete session",
		})
	}

	middleware.LogActivity(c, "DELETE", "sessions", session.ID, fiber.Map{
		"date": session.Date.Format(time.DateOnly),
	})

	return c.JSON(fiber.Map{
		"message": "Session deleted successfully",
	})
}
