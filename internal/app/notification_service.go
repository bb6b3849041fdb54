// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"tariff_digest/internal/domain/report"
	domainTelegram "tariff_digest/internal/domain/telegram"
)

// Notifier announces a freshly built report. Best-effort.
type Notifier interface {
	AnnounceReport(ctx context.Context, outcome report.Outcome) error
}

// NotifierFactory builds a Notifier on demand. It is the only place that
// consults notification credentials, and is only called by the default flow.
type NotifierFactory func() (Notifier, error)

// NotificationService posts report announcements to a chat.
type NotificationService struct {
	telegramClient domainTelegram.Client
	chatID         int64
	pageBaseURL    string
	siteTitle      string
	logger         *logrus.Entry
}

func NewNotificationService(tc domainTelegram.Client, chatID int64, pageBaseURL, siteTitle string, logger *logrus.Entry) *NotificationService {
	return &NotificationService{
		telegramClient: tc,
		chatID:         chatID,
		pageBaseURL:    strings.TrimRight(pageBaseURL, "/"),
		siteTitle:      siteTitle,
		logger:         logger.WithField("component", "notification"),
	}
}

// AnnounceReport sends one message for a BUILT outcome. Other outcomes are ignored.
func (s *NotificationService) AnnounceReport(_ context.Context, outcome report.Outcome) error {
	if outcome.Status != report.OutcomeBuilt {
		return nil
	}
	text := s.formatMessage(outcome)
	if err := s.telegramClient.SendMessage(s.chatID, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("%w: sending announcement for %s: %v", report.ErrNotification, outcome.Date, err)
	}
	s.logger.WithFields(logrus.Fields{
		"report_date": outcome.Date.String(),
		"chat_id":     s.chatID,
	}).Info("Report announcement sent")
	return nil
}

func (s *NotificationService) formatMessage(outcome report.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.siteTitle, outcome.Date)
	switch n := outcome.Fingerprint.ItemCount; n {
	case 0:
		b.WriteString("No new items in this period.")
	case 1:
		b.WriteString("1 new item.")
	default:
		fmt.Fprintf(&b, "%d new items.", n)
	}
	if s.pageBaseURL != "" {
		fmt.Fprintf(&b, "\n%s/%s.html", s.pageBaseURL, outcome.Date)
	}
	return b.String()
}
