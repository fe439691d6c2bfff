package services

import (
	"errors"
	"fmt"
	"time"

	"absensi_go/database"
	"absensi_go/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSantriInBatch = errors.New("no santri users in batch")
	ErrInvalidStatus   = errors.New("invalid attendance status")
)

// BulkUpdateEntry is one item of a bulk attendance update request.
type BulkUpdateEntry struct {
	ID     uint                    `json:"id"`
	Status models.AttendanceStatus `json:"status"`
	Notes  *string                 `json:"notes"`
}

// CreateAttendanceRecords inserts attendance rows for the given users on a
// session, skipping any (session, user) pair that already has a row. The
// verifier and verification time are stamped from the acting user.
func CreateAttendanceRecords(sessionID uint, userIDs []uint, status models.AttendanceStatus, verifierID uint) ([]models.Attendance, int, error) {
	if status == "" {
		status = models.AttendanceAbsent
	}
	if !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	var session models.Session
	if err := database.DB.First(&session, sessionID).Error; err != nil {
		return nil, 0, ErrSessionNotFound
	}

	var existing []models.Attendance
	if err := database.DB.Where("session_id = ? AND user_id IN ?", sessionID, userIDs).Find(&existing).Error; err != nil {
		return nil, 0, err
	}

	missing, skipped := missingUserIDs(existing, userIDs)

	now := time.Now()
	var created []models.Attendance
	for _, userID := range missing {
		created = append(created, models.Attendance{
			SessionID:  sessionID,
			UserID:     userID,
			Status:     status,
			VerifiedBy: &verifierID,
			VerifiedAt: &now,
		})
	}

	if len(created) > 0 {
		if err := database.DB.Create(&created).Error; err != nil {
			return nil, 0, err
		}
	}
	return created, skipped, nil
}

// missingUserIDs filters userIDs down to those without a row in existing,
// dropping duplicate IDs. The second result counts the entries skipped.
func missingUserIDs(existing []models.Attendance, userIDs []uint) ([]uint, int) {
	seen := make(map[uint]bool, len(existing))
	for _, att := range existing {
		seen[att.UserID] = true
	}

	var missing []uint
	skipped := 0
	for _, userID := range userIDs {
		if seen[userID] {
			skipped++
			continue
		}
		seen[userID] = true
		missing = append(missing, userID)
	}
	return missing, skipped
}

// GenerateAttendanceForBatch creates default attendance rows for every
// santri in the session's batch. Existing rows are left untouched so the
// operation is safe to re-invoke.
func GenerateAttendanceForBatch(sessionID uint, status models.AttendanceStatus, verifierID uint) ([]models.Attendance, int, error) {
	var session models.Session
	if err := database.DB.First(&session, sessionID).Error; err != nil {
		return nil, 0, ErrSessionNotFound
	}

	userIDs, err := santriIDsForBatch(database.DB, session.BatchID)
	if err != nil {
		return nil, 0, err
	}
	if len(userIDs) == 0 {
		return nil, 0, ErrNoSantriInBatch
	}

	return CreateAttendanceRecords(sessionID, userIDs, status, verifierID)
}

// GenerateSessionAttendance bulk-inserts one default-absent attendance row per
// santri in the batch, inside the caller's transaction. Used at session
// creation and batch reassignment; no verifier is stamped.
func GenerateSessionAttendance(tx *gorm.DB, sessionID, batchID uint) (int, error) {
	userIDs, err := santriIDsForBatch(tx, batchID)
	if err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	rows := make([]models.Attendance, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.Attendance{
			SessionID: sessionID,
			UserID:    userID,
			Status:    models.AttendanceAbsent,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func santriIDsForBatch(tx *gorm.DB, batchID uint) ([]uint, error) {
	var userIDs []uint
	err := tx.Model(&models.User{}).
		Where("batch_id = ? AND role = ? AND active = ?", batchID, models.RoleSantri, true).
		Pluck("id", &userIDs).Error
	return userIDs, err
}

// BulkUpdateAttendance applies per-row status/notes updates for a session.
// Entries whose row does not belong to the session are skipped without error;
// the operation is best-effort, not all-or-nothing.
func BulkUpdateAttendance(sessionID uint, entries []BulkUpdateEntry, verifierID uint) (int, int, error) {
	// Reject the whole request before touching any row, so an invalid entry
	// mid-list cannot leave earlier entries applied.
	for _, entry := range entries {
		if !entry.Status.Valid() {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, entry.Status)
		}
	}

	now := time.Now()
	updated := 0
	skipped := 0

	for _, entry := range entries {
		changes := map[string]interface{}{
			"status":      entry.Status,
			"verified_by": verifierID,
			"verified_at": now,
		}
		if entry.Notes != nil {
			changes["notes"] = *entry.Notes
		}

		res := database.DB.Model(&models.Attendance{}).
			Where("id = ? AND session_id = ?", entry.ID, sessionID).
			Updates(changes)
		if res.Error != nil {
			return updated, skipped, res.Error
		}
		if res.RowsAffected == 0 {
			skipped++
			continue
		}
		updated++
	}

	return updated, skipped, nil
}

// BulkCreateUpdateFiltered sets the given status for the listed users on a
// session, updating rows that exist and creating the rest, all inside one
// transaction so a failure rolls back every write of the call.
func BulkCreateUpdateFiltered(sessionID uint, userIDs []uint, status models.AttendanceStatus, notes string, verifierID uint) (int, int, error) {
	if !status.Valid() {
		return 0, 0, ErrInvalidStatus
	}

	var session models.Session
	if err := database.DB.First(&session, sessionID).Error; err != nil {
		return 0, 0, ErrSessionNotFound
	}

	now := time.Now()
	createdCount := 0
	updatedCount := 0

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			var att models.Attendance
			err := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&att).Error
			if err == nil {
				changes := map[string]interface{}{
					"status":      status,
					"verified_by": verifierID,
					"verified_at": now,
				}
				if notes != "" {
					changes["notes"] = notes
				}
				if err := tx.Model(&att).Updates(changes).Error; err != nil {
					return err
				}
				updatedCount++
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			att = models.Attendance{
				SessionID:  sessionID,
				UserID:     userID,
				Status:     status,
				Notes:      notes,
				VerifiedBy: &verifierID,
				VerifiedAt: &now,
			}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
			createdCount++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return createdCount, updatedCount, nil
}

// UpdateAttendance updates a single attendance row.
func UpdateAttendance(id uint, status models.AttendanceStatus, notes *string, verifierID uint) (*models.Attendance, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var att models.Attendance
	if err := database.DB.First(&att, id).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	changes := map[string]interface{}{
		"status":      status,
		"verified_by": verifierID,
		"verified_at": now,
	}
	if notes != nil {
		changes["notes"] = *notes
	}
	if err := database.DB.Model(&att).Updates(changes).Error; err != nil {
		return nil, err
	}

	database.DB.Preload("User").Preload("Verifier").First(&att, att.ID)
	return &att, nil
}

// GetAttendanceStats counts attendance rows per status across the sessions
// matching the inclusive date range and optional batch filter.
func GetAttendanceStats(startDate, endDate *time.Time, batchID *uint) (*AttendanceStats, error) {
	query := database.DB.Model(&models.Session{})
	if startDate != nil {
		query = query.Where("date >= ?", startDate.Format("2006-01-02"))
	}
	if endDate != nil {
		query = query.Where("date <= ?", endDate.Format("2006-01-02"))
	}
	if batchID != nil {
		query = query.Where("batch_id = ?", *batchID)
	}

	var sessionIDs []uint
	if err := query.Pluck("id", &sessionIDs).Error; err != nil {
		return nil, err
	}

	stats := &AttendanceStats{TotalSessions: len(sessionIDs)}
	if len(sessionIDs) == 0 {
		return stats, nil
	}

	var attendances []models.Attendance
	if err := database.DB.Where("session_id IN ?", sessionIDs).Find(&attendances).Error; err != nil {
		return nil, err
	}
	for _, att := range attendances {
		stats.Counts.Add(att.Status)
	}
	stats.AttendanceRate = stats.Counts.Rate()

	return stats, nil
}

// GetAttendanceReports aggregates attendance for the filtered session and
// santri sets, overall and grouped by batch, division and session type.
func GetAttendanceReports(startDate, endDate *time.Time, batchID, divisionID, sessionTypeID *uint) (*AttendanceReport, error) {
	sessionQuery := database.DB.Preload("Batch").Preload("SessionType")
	if startDate != nil {
		sessionQuery = sessionQuery.Where("date >= ?", startDate.Format("2006-01-02"))
	}
	if endDate != nil {
		sessionQuery = sessionQuery.Where("date <= ?", endDate.Format("2006-01-02"))
	}
	if batchID != nil {
		sessionQuery = sessionQuery.Where("batch_id = ?", *batchID)
	}
	if sessionTypeID != nil {
		sessionQuery = sessionQuery.Where("session_type_id = ?", *sessionTypeID)
	}

	var sessions []models.Session
	if err := sessionQuery.Find(&sessions).Error; err != nil {
		return nil, err
	}

	userQuery := database.DB.Preload("Division").Where("role = ?", models.RoleSantri)
	if divisionID != nil {
		userQuery = userQuery.Where("division_id = ?", *divisionID)
	}
	var users []models.User
	if err := userQuery.Find(&users).Error; err != nil {
		return nil, err
	}

	if len(sessions) == 0 || len(users) == 0 {
		return aggregateReport(sessions, users, nil), nil
	}

	sessionIDs := make([]uint, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}
	userIDs := make([]uint, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	var attendances []models.Attendance
	if err := database.DB.Where("session_id IN ? AND user_id IN ?", sessionIDs, userIDs).Find(&attendances).Error; err != nil {
		return nil, err
	}

	return aggregateReport(sessions, users, attendances), nil
}

// DeleteSession removes a session and its attendance rows. The rows are
// removed outright, not soft-deleted, so the (date, session type, batch)
// slot can be reused afterwards.
func DeleteSession(sessionID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("session_id = ?", sessionID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Session{}, sessionID).Error
	})
}

// DeleteUser removes a user and their attendance rows. The user row is
// removed outright so the email address can be registered again.
func DeleteUser(userID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, userID).Error
	})
}
