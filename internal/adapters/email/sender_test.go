package email

import (
	"context"
	"testing"
)

// Compile-time checks that both implementations satisfy Sender.
var (
	_ Sender = (*ResendSender)(nil)
	_ Sender = (*NoopSender)(nil)
)

// TestNoopSender_Send verifies the noop sender returns a usable result
// without delivering anything.
func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()

	result, err := s.Send(context.Background(), SendRequest{
		To:      []string{"admin@gym.test"},
		Subject: "memberships expiring",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessageID == "" {
		t.Error("expected a message ID")
	}
	if result.SentAt.IsZero() {
		t.Error("expected SentAt to be set")
	}
}
