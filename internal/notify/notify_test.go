package notify

import (
	"context"
	"errors"
	"testing"
)

type fakeChannel struct {
	name      string
	err       error
	delivered []Message
}

func (f *fakeChannel) Notify(_ context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, msg)
	return nil
}

func (f *fakeChannel) Channel() string { return f.name }

func TestMultiSenderFansOut(t *testing.T) {
	push := &fakeChannel{name: "push"}
	sms := &fakeChannel{name: "sms"}
	sender := NewMultiSender(push, sms)

	msg := Message{Recipient: "+911234", Title: "t", Body: "b"}
	if err := sender.Notify(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(push.delivered) != 1 || len(sms.delivered) != 1 {
		t.Errorf("delivered: push=%d sms=%d", len(push.delivered), len(sms.delivered))
	}
}

func TestMultiSenderPartialFailure(t *testing.T) {
	broken := &fakeChannel{name: "push", err: errors.New("timeout")}
	working := &fakeChannel{name: "sms"}
	sender := NewMultiSender(broken, working)

	if err := sender.Notify(context.Background(), Message{}); err != nil {
		t.Errorf("partial failure should not error: %v", err)
	}
	if len(working.delivered) != 1 {
		t.Error("working channel should still deliver")
	}
}

func TestMultiSenderTotalFailure(t *testing.T) {
	sender := NewMultiSender(
		&fakeChannel{name: "push", err: errors.New("down")},
		&fakeChannel{name: "sms", err: errors.New("down")},
	)

	if err := sender.Notify(context.Background(), Message{}); err == nil {
		t.Error("expected error when every channel fails")
	}
}

func TestMultiSenderNoChannels(t *testing.T) {
	sender := NewMultiSender()
	if err := sender.Notify(context.Background(), Message{Title: "dropped"}); err != nil {
		t.Errorf("no channels should be a no-op, got: %v", err)
	}
}
