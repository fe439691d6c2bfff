package services

import (
	"math"

	"absensi_go/models"
)

// StatusCounts accumulates attendance tallies per status.
type StatusCounts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Total   int `json:"total"`
}

// Add counts one attendance record.
func (sc *StatusCounts) Add(status models.AttendanceStatus) {
	switch status {
	case models.AttendancePresent:
		sc.Present++
	case models.AttendanceLate:
		sc.Late++
	case models.AttendanceAbsent:
		sc.Absent++
	case models.AttendanceExcused:
		sc.Excused++
	default:
		return
	}
	sc.Total++
}

// Rate returns the attendance rate: (present + late) / total * 100,
// rounded to 2 decimals. Zero when nothing has been counted.
func (sc StatusCounts) Rate() float64 {
	if sc.Total == 0 {
		return 0
	}
	rate := float64(sc.Present+sc.Late) / float64(sc.Total) * 100
	return math.Round(rate*100) / 100
}

// AttendanceStats is the response shape for the stats endpoint.
type AttendanceStats struct {
	TotalSessions  int          `json:"total_sessions"`
	Counts         StatusCounts `json:"counts"`
	AttendanceRate float64      `json:"attendance_rate"`
}

// GroupReport carries aggregated counts for one grouping key.
type GroupReport struct {
	ID             uint         `json:"id"`
	Name           string       `json:"name"`
	Counts         StatusCounts `json:"counts"`
	AttendanceRate float64      `json:"attendance_rate"`
}

// AttendanceReport is the response shape for the reports endpoint.
type AttendanceReport struct {
	TotalSessions  int           `json:"total_sessions"`
	TotalUsers     int           `json:"total_users"`
	Counts         StatusCounts  `json:"counts"`
	AttendanceRate float64       `json:"attendance_rate"`
	ByBatch        []GroupReport `json:"by_batch"`
	ByDivision     []GroupReport `json:"by_division"`
	BySessionType  []GroupReport `json:"by_session_type"`
}

// aggregateReport joins sessions, santri users and their attendance rows in
// memory and groups counts by batch, division and session type. Attendance
// rows whose session or user fall outside the filtered sets are ignored.
func aggregateReport(sessions []models.Session, users []models.User, attendances []models.Attendance) *AttendanceReport {
	sessionByID := make(map[uint]*models.Session, len(sessions))
	for i := range sessions {
		sessionByID[sessions[i].ID] = &sessions[i]
	}
	userByID := make(map[uint]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}

	report := &AttendanceReport{
		TotalSessions: len(sessions),
		TotalUsers:    len(users),
		ByBatch:       []GroupReport{},
		ByDivision:    []GroupReport{},
		BySessionType: []GroupReport{},
	}

	batchGroups := make(map[uint]*GroupReport)
	divisionGroups := make(map[uint]*GroupReport)
	typeGroups := make(map[uint]*GroupReport)
	var batchOrder, divisionOrder, typeOrder []uint

	for _, att := range attendances {
		session, ok := sessionByID[att.SessionID]
		if !ok {
			continue
		}
		user, ok := userByID[att.UserID]
		if !ok {
			continue
		}

		report.Counts.Add(att.Status)

		bg, ok := batchGroups[session.BatchID]
		if !ok {
			bg = &GroupReport{ID: session.BatchID, Name: session.Batch.Name}
			batchGroups[session.BatchID] = bg
			batchOrder = append(batchOrder, session.BatchID)
		}
		bg.Counts.Add(att.Status)

		if user.DivisionID != nil {
			dg, ok := divisionGroups[*user.DivisionID]
			if !ok {
				name := ""
				if user.Division != nil {
					name = user.Division.Name
				}
				dg = &GroupReport{ID: *user.DivisionID, Name: name}
				divisionGroups[*user.DivisionID] = dg
				divisionOrder = append(divisionOrder, *user.DivisionID)
			}
			dg.Counts.Add(att.Status)
		}

		tg, ok := typeGroups[session.SessionTypeID]
		if !ok {
			tg = &GroupReport{ID: session.SessionTypeID, Name: session.SessionType.Name}
			typeGroups[session.SessionTypeID] = tg
			typeOrder = append(typeOrder, session.SessionTypeID)
		}
		tg.Counts.Add(att.Status)
	}

	report.AttendanceRate = report.Counts.Rate()

	for _, id := range batchOrder {
		g := batchGroups[id]
		g.AttendanceRate = g.Counts.Rate()
		report.ByBatch = append(report.ByBatch, *g)
	}
	for _, id := range divisionOrder {
		g := divisionGroups[id]
		g.AttendanceRate = g.Counts.Rate()
		report.ByDivision = append(report.ByDivision, *g)
	}
	for _, id := range typeOrder {
		g := typeGroups[id]
		g.AttendanceRate = g.Counts.Rate()
		report.BySessionType = append(report.BySessionType, *g)
	}

	return report
}
