package services

import (
	"time"

	"absensi_go/database"
	"absensi_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionScheduler closes out stale sessions on a nightly cron.
type SessionScheduler struct {
	cron *cron.Cron
}

// NewSessionScheduler creates a new scheduler instance
func NewSessionScheduler() *SessionScheduler {
	return &SessionScheduler{cron: cron.New()}
}

// Start registers the nightly sweep and starts the cron loop.
func (ss *SessionScheduler) Start() {
	_, err := ss.cron.AddFunc("30 0 * * *", ss.SweepStaleSessions)
	if err != nil {
		logrus.WithError(err).Error("Failed to register session sweep job")
		return
	}
	ss.cron.Start()
	logrus.Info("Session scheduler started (nightly sweep at 00:30)")
}

// Stop stops the cron loop.
func (ss *SessionScheduler) Stop() {
	ss.cron.Stop()
}

// SweepStaleSessions marks sessions whose date has passed and are still
// scheduled or in-progress as completed. Cancelled sessions are untouched.
func (ss *SessionScheduler) SweepStaleSessions() {
	today := time.Now().Format("2006-01-02")

	res := database.DB.Model(&models.Session{}).
		Where("date < ? AND status IN ?", today, []models.SessionStatus{models.SessionScheduled, models.SessionInProgress}).
		Update("status", models.SessionCompleted)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("Session sweep failed")
		return
	}

	if res.RowsAffected > 0 {
		logrus.WithField("sessions", res.RowsAffected).Info("Marked stale sessions as completed")
	}
}
