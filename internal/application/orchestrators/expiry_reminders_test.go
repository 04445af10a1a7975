package orchestrators

import (
	"context"
	"strings"
	"testing"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/domain/payment"
)

// mockExpiringStore implements projections.ExpiringPaymentStore for testing.
type mockExpiringStore struct {
	rows []paymentStore.WithMember
}

// ListExpiring returns the seeded rows.
// PRE: from <= to
// POST: returns the seeded rows
func (m *mockExpiringStore) ListExpiring(_ context.Context, _, _ time.Time) ([]paymentStore.WithMember, error) {
	return m.rows, nil
}

// mockSender records sent emails for testing.
type mockSender struct {
	sent []emailAdapter.SendRequest
}

// Send implements email.Sender.
// PRE: req has at least one recipient
// POST: request recorded
func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

// TestExecuteSendExpiryReminders_Empty verifies nothing is sent with no expiring members.
func TestExecuteSendExpiryReminders_Empty(t *testing.T) {
	sender := &mockSender{}
	deps := ExpiryRemindersDeps{
		PaymentStore: &mockExpiringStore{},
		EmailSender:  sender,
		AdminEmail:   "admin@gym.test",
		FromAddress:  "GymDesk <noreply@gym.test>",
	}

	count, err := ExecuteSendExpiryReminders(context.Background(), deps, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(sender.sent) != 0 {
		t.Error("expected no email sent")
	}
}

// TestExecuteSendExpiryReminders_Summary verifies one summary email to the admin.
func TestExecuteSendExpiryReminders_Summary(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	sender := &mockSender{}
	deps := ExpiryRemindersDeps{
		PaymentStore: &mockExpiringStore{rows: []paymentStore.WithMember{
			{
				Payment:   payment.Payment{MemberID: "m1", ExpiresAt: now.Add(48 * time.Hour)},
				FirstName: "Ana", LastName: "Torres", Contact: "a@t.com",
			},
			{
				Payment:   payment.Payment{MemberID: "m2", ExpiresAt: now.Add(96 * time.Hour)},
				FirstName: "Bruno", LastName: "Silva", Contact: "b@s.com",
			},
		}},
		EmailSender: sender,
		AdminEmail:  "admin@gym.test",
		FromAddress: "GymDesk <noreply@gym.test>",
	}

	count, err := ExecuteSendExpiryReminders(context.Background(), deps, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want exactly one summary email", len(sender.sent))
	}

	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "admin@gym.test" {
		t.Errorf("To = %v", req.To)
	}
	if !strings.Contains(req.Subject, "2") {
		t.Errorf("Subject = %q, want member count", req.Subject)
	}
	for _, want := range []string{"Ana Torres", "Bruno Silva", "a@t.com", "17 June 2026"} {
		if !strings.Contains(req.HTML, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

// TestExecuteSendExpiryReminders_EscapesMemberFields verifies that markup in
// free-text member fields cannot leak into the email HTML.
func TestExecuteSendExpiryReminders_EscapesMemberFields(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	sender := &mockSender{}
	deps := ExpiryRemindersDeps{
		PaymentStore: &mockExpiringStore{rows: []paymentStore.WithMember{
			{
				Payment:   payment.Payment{MemberID: "m1", ExpiresAt: now.Add(48 * time.Hour)},
				FirstName: "<b>Ana</b>", LastName: "Torres", Contact: `"a@t.com" <script>`,
			},
		}},
		EmailSender: sender,
		AdminEmail:  "admin@gym.test",
		FromAddress: "GymDesk <noreply@gym.test>",
	}

	if _, err := ExecuteSendExpiryReminders(context.Background(), deps, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}

	body := sender.sent[0].HTML
	for _, raw := range []string{"<b>Ana</b>", "<script>"} {
		if strings.Contains(body, raw) {
			t.Errorf("body contains unescaped %q", raw)
		}
	}
	for _, escaped := range []string{"&lt;b&gt;Ana&lt;/b&gt;", "&lt;script&gt;"} {
		if !strings.Contains(body, escaped) {
			t.Errorf("body missing escaped form %q", escaped)
		}
	}
}
