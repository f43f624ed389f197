package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier delivers notifications as text messages via Twilio
type SMSNotifier struct {
	client     *twilio.RestClient
	fromNumber string
}

// SMSConfig holds Twilio SMS configuration
type SMSConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// NewSMSNotifier creates an SMS channel
func NewSMSNotifier(config SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: config.AccountSID,
			Password: config.AuthToken,
		}),
		fromNumber: config.PhoneNumber,
	}
}

// Notify sends the message as an SMS to the recipient's phone number
func (s *SMSNotifier) Notify(_ context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("no recipient phone number")
	}

	params := &api.CreateMessageParams{}
	params.SetTo(msg.Recipient)
	params.SetFrom(s.fromNumber)
	params.SetBody(msg.Title + "\n" + msg.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// Channel identifies this notifier
func (s *SMSNotifier) Channel() string { return "sms" }
