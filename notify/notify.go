// Package notify delivers scan reports and scanner failure alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"jobscanner/config"
)

// Message is a single notification. To may hold several addresses.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Notifier sends a message over one channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// New builds the notifier registered under name from cfg.
func New(name string, cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	client := &http.Client{Timeout: cfg.NotifyTimeout}

	switch name {
	case config.NotifierSMTP:
		return NewSMTP(cfg.SMTPAddr, cfg.NotifyTimeout), nil
	case config.NotifierSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid notifier requires SENDGRID_API_KEY")
		}
		return NewSendGrid(cfg.SendGridAPIKey), nil
	case config.NotifierSlack:
		return NewSlack(cfg.SlackWebhookURL, client), nil
	case config.NotifierAlertmanager:
		return NewAlertmanager(cfg.AlertmanagerURL, cfg.Env, client), nil
	case config.NotifierLog:
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", name)
	}
}
