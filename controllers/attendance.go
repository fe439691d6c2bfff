package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"absensi_go/database"
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/services"
	ws "absensi_go/services/websocket"
	"absensi_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type AttendanceController struct {
	Hub  *ws.Hub
	Line *services.LineMessagingService
}

func NewAttendanceController(hub *ws.Hub, line *services.LineMessagingService) *AttendanceController {
	return &AttendanceController{Hub: hub, Line: line}
}

// GetSessionAttendance returns all attendance rows of a session
func (ac *AttendanceController) GetSessionAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.Preload("SessionType").Preload("Batch").First(&session, uint(sessionID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var attendances []models.Attendance
	query := database.DB.Where("session_id = ?", session.ID).
		Preload("User").Preload("Verifier")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("id ASC").Find(&attendances).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance",
		})
	}

	counts := services.StatusCounts{}
	for _, att := range attendances {
		counts.Add(att.Status)
	}

	return c.JSON(fiber.Map{
		"session":         session,
		"attendance":      attendances,
		"counts":          counts,
		"attendance_rate": counts.Rate(),
	})
}

// CreateSessionAttendance creates attendance rows for the listed users,
// skipping users who already have a row for the session.
func (ac *AttendanceController) CreateSessionAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req struct {
		UserIDs []uint                  `json:"user_ids"`
		Status  models.AttendanceStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.UserIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_ids is required",
		})
	}
	if req.Status == "" {
		req.Status = models.AttendanceAbsent
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance status",
		})
	}

	currentUser, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	records, skipped, err := services.CreateAttendanceRecords(uint(sessionID), req.UserIDs, req.Status, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create attendance records",
		})
	}

	middleware.LogActivity(c, "CREATE", "attendance", uint(sessionID), fiber.Map{
		"created": len(records),
		"skipped": skipped,
	})

	ac.Hub.BroadcastAttendanceUpdate(uint(sessionID), fiber.Map{
		"created": len(records),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Attendance records created",
		"attendance": records,
		"skipped":    skipped,
	})
}

// GenerateAttendance creates attendance rows for every santri in the
// session's batch who does not have one yet.
func (ac *AttendanceController) GenerateAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req struct {
		Status models.AttendanceStatus `json:"status"`
	}
	c.BodyParser(&req)
	if req.Status == "" {
		req.Status = models.AttendanceAbsent
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance status",
		})
	}

	currentUser, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	records, skipped, err := services.GenerateAttendanceForBatch(uint(sessionID), req.Status, currentUser.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		case errors.Is(err, services.ErrNoSantriInBatch):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "No santri found in the session's batch",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate attendance",
			})
		}
	}

	middleware.LogActivity(c, "CREATE", "attendance", uint(sessionID), fiber.Map{
		"generated": len(records),
		"skipped":   skipped,
	})

	ac.Hub.BroadcastAttendanceUpdate(uint(sessionID), fiber.Map{
		"generated": len(records),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Attendance generated",
		"attendance": records,
		"skipped":    skipped,
	})
}

// GetUsersForAttendance lists the santri of the session's batch together
// with their current attendance row, if any.
func (ac *AttendanceController) GetUsersForAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(sessionID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var users []models.User
	if err := database.DB.Where("batch_id = ? AND role = ? AND active = ?",
		session.BatchID, models.RoleSantri, true).
		Preload("Division").Order("name ASC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	var attendances []models.Attendance
	database.DB.Where("session_id = ?", session.ID).Find(&attendances)
	attByUser := make(map[uint]*models.Attendance, len(attendances))
	for i := range attendances {
		attByUser[attendances[i].UserID] = &attendances[i]
	}

	type userWithAttendance struct {
		User       models.User        `json:"user"`
		Attendance *models.Attendance `json:"attendance"`
	}
	result := make([]userWithAttendance, 0, len(users))
	for _, user := range users {
		result = append(result, userWithAttendance{
			User:       user,
			Attendance: attByUser[user.ID],
		})
	}

	return c.JSON(fiber.Map{
		"session": session,
		"users":   result,
	})
}

// BulkUpdateSessionAttendance applies per-row status updates, best effort.
// Rows that do not belong to the session are skipped, not failed.
func (ac *AttendanceController) BulkUpdateSessionAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(sessionID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var req struct {
		Entries []services.BulkUpdateEntry `json:"entries"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "entries is required",
		})
	}

	currentUser, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	updated, skipped, err := services.BulkUpdateAttendance(session.ID, req.Entries, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid attendance status",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update attendance",
		})
	}

	middleware.LogActivity(c, "UPDATE", "attendance", session.ID, fiber.Map{
		"updated": updated,
		"skipped": skipped,
	})

	ac.Hub.BroadcastAttendanceUpdate(session.ID, fiber.Map{
		"updated": updated,
	})

	return c.JSON(fiber.Map{
		"message": "Attendance updated",
		"updated": updated,
		"skipped": skipped,
	})
}

// FilteredAttendance sets one status for a list of users on a session,
// creating missing rows and updating existing ones in one transaction.
// Sends a recap to the configured LINE group when the session completes.
func (ac *AttendanceController) FilteredAttendance(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("sessionId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req struct {
		UserIDs []uint                  `json:"user_ids"`
		Status  models.AttendanceStatus `json:"status"`
		Notes   string                  `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.UserIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_ids is required",
		})
	}

	currentUser, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	created, updated, err := services.BulkCreateUpdateFiltered(uint(sessionID), req.UserIDs, req.Status, req.Notes, currentUser.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid attendance status",
			})
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save attendance",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "attendance", uint(sessionID), fiber.Map{
		"created": created,
		"updated": updated,
		"status":  req.Status,
	})

	ac.Hub.BroadcastAttendanceUpdate(uint(sessionID), fiber.Map{
		"created": created,
		"updated": updated,
		"status":  req.Status,
	})

	go ac.sendRecapIfCompleted(uint(sessionID))

	return c.JSON(fiber.Map{
		"message": "Attendance saved",
		"created": created,
		"updated": updated,
	})
}

func (ac *AttendanceController) sendRecapIfCompleted(sessionID uint) {
	if ac.Line == nil {
		return
	}

	var session models.Session
	if err := database.DB.Preload("SessionType").First(&session, sessionID).Error; err != nil {
		return
	}
	if session.Status != models.SessionCompleted {
		return
	}

	var attendances []models.Attendance
	if err := database.DB.Where("session_id = ?", sessionID).Find(&attendances).Error; err != nil {
		return
	}
	counts := services.StatusCounts{}
	for _, att := range attendances {
		counts.Add(att.Status)
	}

	ac.Line.SendAttendanceRecap(session.SessionType.Name, session.Date.Format("2006-01-02"), counts)
}

// UpdateAttendance updates a single attendance row by its ID
func (ac *AttendanceController) UpdateAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance ID",
		})
	}

	var req struct {
		Status models.AttendanceStatus `json:"status"`
		Notes  *string                 `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	currentUser, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	att, err := services.UpdateAttendance(uint(id), req.Status, req.Notes, currentUser.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid attendance status",
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Attendance record not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update attendance",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "attendance", att.ID, fiber.Map{
		"status": req.Status,
	})

	ac.Hub.BroadcastAttendanceUpdate(att.SessionID, fiber.Map{
		"attendance_id": att.ID,
		"status":        att.Status,
	})

	return c.JSON(fiber.Map{
		"message":    "Attendance updated",
		"attendance": att,
	})
}

// GetAttendanceStats returns totals per status over an optional date range
// and batch filter.
func (ac *AttendanceController) GetAttendanceStats(c *fiber.Ctx) error {
	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	batchID, err := parseOptionalUintQuery(c, "batch_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "batch_id must be a number",
		})
	}

	stats, err := services.GetAttendanceStats(startDate, endDate, batchID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}

// GetAttendanceReports returns aggregated attendance grouped by batch,
// division and session type over the requested filters.
func (ac *AttendanceController) GetAttendanceReports(c *fiber.Ctx) error {
	report, err := ac.buildReport(c)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	return c.JSON(fiber.Map{
		"report": report,
	})
}

// ExportAttendanceReports writes the report as an xlsx workbook
func (ac *AttendanceController) ExportAttendanceReports(c *fiber.Ctx) error {
	report, err := ac.buildReport(c)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)
	f.SetCellValue(sheet, "A1", "Attendance Report")
	f.SetCellValue(sheet, "A2", "Generated")
	f.SetCellValue(sheet, "B2", time.Now().Format("2006-01-02 15:04"))
	f.SetCellValue(sheet, "A4", "Total Sessions")
	f.SetCellValue(sheet, "B4", report.TotalSessions)
	f.SetCellValue(sheet, "A5", "Total Santri")
	f.SetCellValue(sheet, "B5", report.TotalUsers)
	f.SetCellValue(sheet, "A6", "Present")
	f.SetCellValue(sheet, "B6", report.Counts.Present)
	f.SetCellValue(sheet, "A7", "Late")
	f.SetCellValue(sheet, "B7", report.Counts.Late)
	f.SetCellValue(sheet, "A8", "Absent")
	f.SetCellValue(sheet, "B8", report.Counts.Absent)
	f.SetCellValue(sheet, "A9", "Excused")
	f.SetCellValue(sheet, "B9", report.Counts.Excused)
	f.SetCellValue(sheet, "A10", "Attendance Rate (%)")
	f.SetCellValue(sheet, "B10", report.AttendanceRate)

	writeGroupSheet(f, "By Batch", report.ByBatch)
	writeGroupSheet(f, "By Division", report.ByDivision)
	writeGroupSheet(f, "By Session Type", report.BySessionType)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build report file",
		})
	}

	filename := fmt.Sprintf("attendance-report-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

func writeGroupSheet(f *excelize.File, name string, groups []services.GroupReport) {
	f.NewSheet(name)
	headers := []string{"Name", "Present", "Late", "Absent", "Excused", "Total", "Rate (%)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}
	for row, g := range groups {
		values := []interface{}{
			g.Name, g.Counts.Present, g.Counts.Late, g.Counts.Absent,
			g.Counts.Excused, g.Counts.Total, g.AttendanceRate,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(name, cell, v)
		}
	}
}

// buildReport parses the shared report filters and runs the aggregation.
// A nil report with a nil error means the response has already been written.
func (ac *AttendanceController) buildReport(c *fiber.Ctx) (*services.AttendanceReport, error) {
	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var batchID, divisionID, sessionTypeID *uint
	for _, q := range []struct {
		key  string
		dest **uint
	}{
		{"batch_id", &batchID},
		{"division_id", &divisionID},
		{"session_type_id", &sessionTypeID},
	} {
		v, err := parseOptionalUintQuery(c, q.key)
		if err != nil {
			return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": q.key + " must be a number",
			})
		}
		*q.dest = v
	}

	report, err := services.GetAttendanceReports(startDate, endDate, batchID, divisionID, sessionTypeID)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build report",
		})
	}
	return report, nil
}

func parseDateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if v := c.Query("start_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return nil, nil, errors.New("start_date must be in YYYY-MM-DD format")
		}
		startDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return nil, nil, errors.New("end_date must be in YYYY-MM-DD format")
		}
		endDate = &t
	}
	return startDate, endDate, nil
}

func parseOptionalUintQuery(c *fiber.Ctx, key string) (*uint, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return nil, err
	}
	u := uint(n)
	return &u, nil
}
