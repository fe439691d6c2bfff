package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"absensi_go/database"
	"absensi_go/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package database handle for a throwaway sqlite file
// with the full schema migrated. The previous handle is restored on cleanup.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Batch{},
		&models.Division{},
		&models.SessionType{},
		&models.Session{},
		&models.Attendance{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedBatch(t *testing.T, db *gorm.DB, name string, year int) models.Batch {
	t.Helper()
	batch := models.Batch{Name: name, Year: year, Active: true}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch
}

func seedSessionType(t *testing.T, db *gorm.DB, name string) models.SessionType {
	t.Helper()
	st := models.SessionType{Name: name, StartTime: "04:30", EndTime: "05:30", Active: true}
	if err := db.Create(&st).Error; err != nil {
		t.Fatalf("seed session type: %v", err)
	}
	return st
}

func seedSantri(t *testing.T, db *gorm.DB, email string, batchID uint) models.User {
	t.Helper()
	user := models.User{
		Name:     "Santri " + email,
		Email:    email,
		Password: "hashed",
		Role:     models.RoleSantri,
		BatchID:  &batchID,
		Active:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed santri: %v", err)
	}
	return user
}

func seedSession(t *testing.T, db *gorm.DB, date time.Time, typeID, batchID uint) models.Session {
	t.Helper()
	session := models.Session{
		Date:          date,
		StartTime:     "04:30",
		EndTime:       "05:30",
		SessionTypeID: typeID,
		BatchID:       batchID,
		Status:        models.SessionScheduled,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func TestMissingUserIDs(t *testing.T) {
	existing := []models.Attendance{
		{SessionID: 1, UserID: 10},
		{SessionID: 1, UserID: 11},
	}

	tests := []struct {
		name        string
		existing    []models.Attendance
		userIDs     []uint
		wantMissing []uint
		wantSkipped int
	}{
		{
			name:        "no overlap",
			existing:    nil,
			userIDs:     []uint{1, 2, 3},
			wantMissing: []uint{1, 2, 3},
			wantSkipped: 0,
		},
		{
			name:        "full overlap",
			existing:    existing,
			userIDs:     []uint{10, 11},
			wantMissing: nil,
			wantSkipped: 2,
		},
		{
			name:        "partial overlap",
			existing:    existing,
			userIDs:     []uint{10, 12, 11, 13},
			wantMissing: []uint{12, 13},
			wantSkipped: 2,
		},
		{
			name:        "duplicate input ids collapse to one row",
			existing:    nil,
			userIDs:     []uint{5, 5, 5},
			wantMissing: []uint{5},
			wantSkipped: 2,
		},
		{
			name:        "empty input",
			existing:    existing,
			userIDs:     nil,
			wantMissing: nil,
			wantSkipped: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			missing, skipped := missingUserIDs(tc.existing, tc.userIDs)
			if len(missing) != len(tc.wantMissing) {
				t.Fatalf("missing = %v, want %v", missing, tc.wantMissing)
			}
			for i := range missing {
				if missing[i] != tc.wantMissing[i] {
					t.Fatalf("missing = %v, want %v", missing, tc.wantMissing)
				}
			}
			if skipped != tc.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tc.wantSkipped)
			}
		})
	}
}

func TestCreateAttendanceRecordsSkipsExistingPairs(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 1", 2025)
	st := seedSessionType(t, db, "Kajian Subuh")
	session := seedSession(t, db, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	u1 := seedSantri(t, db, "santri1@pesantren.id", batch.ID)
	u2 := seedSantri(t, db, "santri2@pesantren.id", batch.ID)
	u3 := seedSantri(t, db, "santri3@pesantren.id", batch.ID)

	created, skipped, err := CreateAttendanceRecords(session.ID, []uint{u1.ID, u2.ID}, models.AttendancePresent, 1)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(created) != 2 || skipped != 0 {
		t.Fatalf("first call created %d skipped %d, want 2 and 0", len(created), skipped)
	}

	created, skipped, err = CreateAttendanceRecords(session.ID, []uint{u1.ID, u2.ID, u3.ID}, models.AttendancePresent, 1)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(created) != 1 || skipped != 2 {
		t.Fatalf("second call created %d skipped %d, want 1 and 2", len(created), skipped)
	}

	var total int64
	db.Model(&models.Attendance{}).Where("session_id = ?", session.ID).Count(&total)
	if total != 3 {
		t.Errorf("attendance rows = %d, want 3", total)
	}
	var perUser int64
	db.Model(&models.Attendance{}).Where("session_id = ? AND user_id = ?", session.ID, u1.ID).Count(&perUser)
	if perUser != 1 {
		t.Errorf("rows for user %d = %d, want 1", u1.ID, perUser)
	}
}

func TestGenerateAttendanceForBatchRepeatable(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 2", 2025)
	st := seedSessionType(t, db, "Tahfidz")
	session := seedSession(t, db, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	seedSantri(t, db, "a@pesantren.id", batch.ID)
	seedSantri(t, db, "b@pesantren.id", batch.ID)

	created, skipped, err := GenerateAttendanceForBatch(session.ID, models.AttendanceAbsent, 1)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if len(created) != 2 || skipped != 0 {
		t.Fatalf("first generate created %d skipped %d, want 2 and 0", len(created), skipped)
	}

	created, skipped, err = GenerateAttendanceForBatch(session.ID, models.AttendanceAbsent, 1)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(created) != 0 || skipped != 2 {
		t.Fatalf("second generate created %d skipped %d, want 0 and 2", len(created), skipped)
	}

	var total int64
	db.Model(&models.Attendance{}).Where("session_id = ?", session.ID).Count(&total)
	if total != 2 {
		t.Errorf("attendance rows = %d, want 2", total)
	}
}

func TestGenerateAttendanceForBatchEmptyBatch(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan Kosong", 2025)
	st := seedSessionType(t, db, "Kajian Malam")
	session := seedSession(t, db, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)

	if _, _, err := GenerateAttendanceForBatch(session.ID, models.AttendanceAbsent, 1); !errors.Is(err, ErrNoSantriInBatch) {
		t.Fatalf("err = %v, want ErrNoSantriInBatch", err)
	}
}

func TestBulkCreateUpdateFilteredAllOrNothing(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 3", 2025)
	st := seedSessionType(t, db, "Kajian Subuh")
	session := seedSession(t, db, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	other := seedSession(t, db, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	u1 := seedSantri(t, db, "c@pesantren.id", batch.ID)
	u2 := seedSantri(t, db, "d@pesantren.id", batch.ID)

	// Make the second insert of the call collide: one row per user total.
	if err := db.Exec("CREATE UNIQUE INDEX idx_one_row_per_user ON attendances(user_id)").Error; err != nil {
		t.Fatalf("create index: %v", err)
	}
	if err := db.Create(&models.Attendance{SessionID: other.ID, UserID: u2.ID, Status: models.AttendanceAbsent}).Error; err != nil {
		t.Fatalf("seed conflicting row: %v", err)
	}

	_, _, err := BulkCreateUpdateFiltered(session.ID, []uint{u1.ID, u2.ID}, models.AttendancePresent, "", 1)
	if err == nil {
		t.Fatal("expected insert conflict error, got nil")
	}

	var total int64
	db.Model(&models.Attendance{}).Where("session_id = ?", session.ID).Count(&total)
	if total != 0 {
		t.Errorf("rows in target session after rollback = %d, want 0", total)
	}
}

func TestBulkUpdateAttendanceValidatesBeforeWriting(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 4", 2025)
	st := seedSessionType(t, db, "Tahfidz")
	session := seedSession(t, db, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	u1 := seedSantri(t, db, "e@pesantren.id", batch.ID)
	u2 := seedSantri(t, db, "f@pesantren.id", batch.ID)

	created, _, err := CreateAttendanceRecords(session.ID, []uint{u1.ID, u2.ID}, models.AttendanceAbsent, 1)
	if err != nil {
		t.Fatalf("seed attendance: %v", err)
	}

	entries := []BulkUpdateEntry{
		{ID: created[0].ID, Status: models.AttendancePresent},
		{ID: created[1].ID, Status: "bogus"},
	}
	updated, skipped, err := BulkUpdateAttendance(session.ID, entries, 1)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if updated != 0 || skipped != 0 {
		t.Errorf("updated %d skipped %d, want 0 and 0", updated, skipped)
	}

	var first models.Attendance
	if err := db.First(&first, created[0].ID).Error; err != nil {
		t.Fatalf("reload first row: %v", err)
	}
	if first.Status != models.AttendanceAbsent {
		t.Errorf("first row status = %q, want unchanged %q", first.Status, models.AttendanceAbsent)
	}
}

func TestDeleteSessionFreesSlot(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 5", 2025)
	st := seedSessionType(t, db, "Kajian Subuh")
	date := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	session := seedSession(t, db, date, st.ID, batch.ID)
	u1 := seedSantri(t, db, "g@pesantren.id", batch.ID)

	if _, _, err := CreateAttendanceRecords(session.ID, []uint{u1.ID}, models.AttendanceAbsent, 1); err != nil {
		t.Fatalf("seed attendance: %v", err)
	}

	if err := DeleteSession(session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	var leftover int64
	db.Unscoped().Model(&models.Attendance{}).Where("session_id = ?", session.ID).Count(&leftover)
	if leftover != 0 {
		t.Errorf("attendance rows left behind = %d, want 0", leftover)
	}

	// The (date, session type, batch) slot must be reusable.
	replacement := models.Session{
		Date:          date,
		SessionTypeID: st.ID,
		BatchID:       batch.ID,
		Status:        models.SessionScheduled,
	}
	if err := db.Create(&replacement).Error; err != nil {
		t.Fatalf("recreate session in freed slot: %v", err)
	}
}

func TestDeleteUserFreesEmail(t *testing.T) {
	db := setupTestDB(t)

	batch := seedBatch(t, db, "Angkatan 6", 2025)
	st := seedSessionType(t, db, "Tahfidz")
	session := seedSession(t, db, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), st.ID, batch.ID)
	user := seedSantri(t, db, "reuse@pesantren.id", batch.ID)

	if _, _, err := CreateAttendanceRecords(session.ID, []uint{user.ID}, models.AttendanceAbsent, 1); err != nil {
		t.Fatalf("seed attendance: %v", err)
	}

	if err := DeleteUser(user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var leftover int64
	db.Unscoped().Model(&models.Attendance{}).Where("user_id = ?", user.ID).Count(&leftover)
	if leftover != 0 {
		t.Errorf("attendance rows left behind = %d, want 0", leftover)
	}

	// The email must be registrable again.
	again := seedSantri(t, db, "reuse@pesantren.id", batch.ID)
	if again.ID == user.ID {
		t.Errorf("recreated user reused id %d", again.ID)
	}
}
