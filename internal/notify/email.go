package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailNotifier delivers notifications by email via SendGrid
type EmailNotifier struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// EmailConfig holds SendGrid configuration
type EmailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// NewEmailNotifier creates an email channel
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(config.APIKey),
		fromName:  config.FromName,
		fromEmail: config.FromEmail,
	}
}

// Notify sends the message as a plain-text email
func (e *EmailNotifier) Notify(_ context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("no recipient email address")
	}

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("", msg.Recipient)
	message := mail.NewSingleEmail(from, msg.Title, to, msg.Body, "")

	resp, err := e.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Channel identifies this notifier
func (e *EmailNotifier) Channel() string { return "email" }
