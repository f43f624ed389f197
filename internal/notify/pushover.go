package notify

import (
	"context"

	"github.com/carebridge/carebridge-be/pkg/pushover"
)

// PushoverNotifier delivers push notifications via Pushover
type PushoverNotifier struct {
	client *pushover.Client
}

// NewPushoverNotifier creates a push-notification channel
func NewPushoverNotifier(client *pushover.Client) *PushoverNotifier {
	return &PushoverNotifier{client: client}
}

// Notify sends the message as a push notification
func (p *PushoverNotifier) Notify(ctx context.Context, msg Message) error {
	return p.client.Push(ctx, msg.Title, msg.Body)
}

// Channel identifies this notifier
func (p *PushoverNotifier) Channel() string { return "pushover" }
