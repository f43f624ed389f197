package notify

import (
	"context"
	"fmt"
	"log"
)

// Message is a notification to deliver to a patient
type Message struct {
	Recipient string // phone number or email, depending on channel
	Title     string
	Body      string
}

// Notifier delivers a notification over one channel
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Channel() string
}

// MultiSender fans a message out to every configured channel. Failures
// on one channel are logged and do not block the others.
type MultiSender struct {
	notifiers []Notifier
}

// NewMultiSender creates a fan-out sender over the given channels
func NewMultiSender(notifiers ...Notifier) *MultiSender {
	return &MultiSender{notifiers: notifiers}
}

// Notify delivers to all channels and returns an error only if every
// channel failed.
func (m *MultiSender) Notify(ctx context.Context, msg Message) error {
	if len(m.notifiers) == 0 {
		log.Printf("No notification channels configured, dropping: %s", msg.Title)
		return nil
	}

	failures := 0
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			log.Printf("Notification via %s failed: %v", n.Channel(), err)
			failures++
		}
	}
	if failures == len(m.notifiers) {
		return fmt.Errorf("all %d notification channels failed", failures)
	}
	return nil
}

// Channel identifies the fan-out sender
func (m *MultiSender) Channel() string { return "multi" }
