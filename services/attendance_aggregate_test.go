package services

import (
	"testing"
	"time"

	"absensi_go/models"
)

func TestStatusCountsRate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.AttendanceStatus
		expRate  float64
	}{
		{
			name:     "empty counts",
			statuses: nil,
			expRate:  0,
		},
		{
			name: "all present",
			statuses: []models.AttendanceStatus{
				models.AttendancePresent,
				models.AttendancePresent,
			},
			expRate: 100,
		},
		{
			name: "late counts toward rate",
			statuses: []models.AttendanceStatus{
				models.AttendancePresent,
				models.AttendanceLate,
				models.AttendanceAbsent,
			},
			expRate: 66.67,
		},
		{
			name: "excused does not count toward rate",
			statuses: []models.AttendanceStatus{
				models.AttendancePresent,
				models.AttendanceExcused,
			},
			expRate: 50,
		},
		{
			name: "repeating third rounds to two decimals",
			statuses: []models.AttendanceStatus{
				models.AttendancePresent,
				models.AttendanceAbsent,
				models.AttendanceAbsent,
			},
			expRate: 33.33,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			counts := StatusCounts{}
			for _, s := range tc.statuses {
				counts.Add(s)
			}
			if got := counts.Rate(); got != tc.expRate {
				t.Fatalf("expected rate %v, got %v", tc.expRate, got)
			}
		})
	}
}

func TestStatusCountsAdd(t *testing.T) {
	counts := StatusCounts{}
	counts.Add(models.AttendancePresent)
	counts.Add(models.AttendanceLate)
	counts.Add(models.AttendanceAbsent)
	counts.Add(models.AttendanceExcused)
	counts.Add(models.AttendanceStatus("bogus"))

	if counts.Present != 1 || counts.Late != 1 || counts.Absent != 1 || counts.Excused != 1 {
		t.Fatalf("unexpected per-status counts: %+v", counts)
	}
	if counts.Total != 4 {
		t.Fatalf("expected total 4 (unknown status ignored), got %d", counts.Total)
	}
}

func makeSession(id, batchID, typeID uint, batchName, typeName string) models.Session {
	s := models.Session{
		Date:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		SessionTypeID: typeID,
		BatchID:       batchID,
		Status:        models.SessionCompleted,
		SessionType:   models.SessionType{Name: typeName},
		Batch:         models.Batch{Name: batchName},
	}
	s.ID = id
	return s
}

func makeSantri(id uint, divisionID *uint, divisionName string) models.User {
	u := models.User{
		Name:       "Santri",
		Role:       models.RoleSantri,
		DivisionID: divisionID,
	}
	if divisionID != nil {
		u.Division = &models.Division{Name: divisionName}
	}
	u.ID = id
	return u
}

func makeAttendance(sessionID, userID uint, status models.AttendanceStatus) models.Attendance {
	return models.Attendance{
		SessionID: sessionID,
		UserID:    userID,
		Status:    status,
	}
}

func TestAggregateReport(t *testing.T) {
	div1 := uint(1)
	div2 := uint(2)

	sessions := []models.Session{
		makeSession(1, 10, 100, "Angkatan 2025", "Kajian Subuh"),
		makeSession(2, 20, 200, "Angkatan 2024", "Kajian Malam"),
	}
	users := []models.User{
		makeSantri(1, &div1, "Tahfidz"),
		makeSantri(2, &div2, "Bahasa"),
		makeSantri(3, nil, ""),
	}
	attendances := []models.Attendance{
		makeAttendance(1, 1, models.AttendancePresent),
		makeAttendance(1, 2, models.AttendanceLate),
		makeAttendance(1, 3, models.AttendanceAbsent),
		makeAttendance(2, 1, models.AttendanceAbsent),
		makeAttendance(2, 2, models.AttendancePresent),
	}

	report := aggregateReport(sessions, users, attendances)

	if report.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", report.TotalSessions)
	}
	if report.TotalUsers != 3 {
		t.Fatalf("expected 3 users, got %d", report.TotalUsers)
	}
	if report.Counts.Total != 5 {
		t.Fatalf("expected 5 attendance rows, got %d", report.Counts.Total)
	}
	if report.Counts.Present != 2 || report.Counts.Late != 1 || report.Counts.Absent != 2 {
		t.Fatalf("unexpected overall counts: %+v", report.Counts)
	}
	if report.AttendanceRate != 60 {
		t.Fatalf("expected overall rate 60, got %v", report.AttendanceRate)
	}

	if len(report.ByBatch) != 2 {
		t.Fatalf("expected 2 batch groups, got %d", len(report.ByBatch))
	}
	first := report.ByBatch[0]
	if first.ID != 10 || first.Name != "Angkatan 2025" {
		t.Fatalf("unexpected first batch group: %+v", first)
	}
	if first.Counts.Total != 3 || first.AttendanceRate != 66.67 {
		t.Fatalf("unexpected first batch counts: %+v rate %v", first.Counts, first.AttendanceRate)
	}

	// User 3 has no division, so only two division groups appear
	if len(report.ByDivision) != 2 {
		t.Fatalf("expected 2 division groups, got %d", len(report.ByDivision))
	}
	for _, g := range report.ByDivision {
		if g.Counts.Total != 2 {
			t.Fatalf("expected 2 rows per division, got %+v", g)
		}
	}

	if len(report.BySessionType) != 2 {
		t.Fatalf("expected 2 session type groups, got %d", len(report.BySessionType))
	}
	if report.BySessionType[0].Name != "Kajian Subuh" {
		t.Fatalf("unexpected session type group order: %+v", report.BySessionType)
	}
}

func TestAggregateReportSkipsOrphanRows(t *testing.T) {
	sessions := []models.Session{
		makeSession(1, 10, 100, "Angkatan 2025", "Kajian Subuh"),
	}
	users := []models.User{
		makeSantri(1, nil, ""),
	}
	attendances := []models.Attendance{
		makeAttendance(1, 1, models.AttendancePresent),
		makeAttendance(99, 1, models.AttendancePresent),
		makeAttendance(1, 99, models.AttendancePresent),
	}

	report := aggregateReport(sessions, users, attendances)

	if report.Counts.Total != 1 {
		t.Fatalf("expected orphan rows to be skipped, got total %d", report.Counts.Total)
	}
}

func TestAggregateReportEmpty(t *testing.T) {
	report := aggregateReport(nil, nil, nil)

	if report.Counts.Total != 0 || report.AttendanceRate != 0 {
		t.Fatalf("expected zeroed report, got %+v", report)
	}
	if report.ByBatch == nil || report.ByDivision == nil || report.BySessionType == nil {
		t.Fatalf("expected empty slices, got nils: %+v", report)
	}
}
