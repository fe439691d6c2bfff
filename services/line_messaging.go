package services

import (
	"fmt"
	"log"

	"absensi_go/config"

	"github.com/line/line-bot-sdk-go/linebot"
)

// LineMessagingService wraps the LINE Messaging API client used for
// attendance recap pushes.
type LineMessagingService struct {
	Bot     *linebot.Client
	GroupID string
}

// NewLineMessagingService creates a new instance
func NewLineMessagingService() *LineMessagingService {
	channelSecret := config.AppConfig.LineChannelSecret
	channelToken := config.AppConfig.LineChannelToken

	if channelSecret == "" || channelToken == "" {
		log.Println("LINE Messaging API disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return &LineMessagingService{Bot: nil}
	}

	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		log.Printf("Cannot create LINE bot client: %v", err)
		return &LineMessagingService{Bot: nil}
	}

	return &LineMessagingService{Bot: bot, GroupID: config.AppConfig.LineRecapGroupID}
}

// SendLineMessageToGroup pushes a text message to the given group ID
func (s *LineMessagingService) SendLineMessageToGroup(groupID string, message string) error {
	if s.Bot == nil {
		return fmt.Errorf("LINE Bot client is not initialized")
	}

	_, err := s.Bot.PushMessage(groupID, linebot.NewTextMessage(message)).Do()
	if err != nil {
		return fmt.Errorf("LINE Messaging API failed: %v", err)
	}
	return nil
}

// SendAttendanceRecap pushes a session attendance recap to the configured
// recap group. A missing configuration is not an error for the caller.
func (s *LineMessagingService) SendAttendanceRecap(sessionName, date string, counts StatusCounts) {
	if s.Bot == nil || s.GroupID == "" {
		return
	}

	message := fmt.Sprintf(
		"Rekap presensi %s (%s)\nHadir: %d\nTerlambat: %d\nAlpa: %d\nIzin: %d\nTingkat kehadiran: %.2f%%",
		sessionName, date, counts.Present, counts.Late, counts.Absent, counts.Excused, counts.Rate(),
	)

	if err := s.SendLineMessageToGroup(s.GroupID, message); err != nil {
		log.Printf("Failed to push attendance recap to LINE: %v", err)
	}
}
