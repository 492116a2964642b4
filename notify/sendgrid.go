package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier sends mail through the SendGrid v3 API.
type SendGridNotifier struct {
	client *sendgrid.Client
}

func NewSendGrid(apiKey string) *SendGridNotifier {
	return &SendGridNotifier{client: sendgrid.NewSendClient(apiKey)}
}

func (n *SendGridNotifier) Name() string { return "sendgrid" }

func (n *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("sendgrid: sender and at least one recipient are required")
	}

	response, err := n.client.SendWithContext(ctx, buildSendGridMail(msg))
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: API error: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func buildSendGridMail(msg Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("Job Scanner", msg.From))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.Body))
	return m
}
