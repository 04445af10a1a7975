package projections

import (
	"context"
	"testing"
	"time"

	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/domain/payment"
)

type mockExpiringPaymentStore struct {
	rows    []paymentStore.WithMember
	gotFrom time.Time
	gotTo   time.Time
}

// ListExpiring records the requested window and returns the seeded rows.
// PRE: from <= to
// POST: Returns the seeded rows
func (m *mockExpiringPaymentStore) ListExpiring(_ context.Context, from, to time.Time) ([]paymentStore.WithMember, error) {
	m.gotFrom, m.gotTo = from, to
	return m.rows, nil
}

// TestQueryGetExpiringMembers_Window verifies the seven-day lookup window.
func TestQueryGetExpiringMembers_Window(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	ps := &mockExpiringPaymentStore{}

	_, err := QueryGetExpiringMembers(context.Background(), GetExpiringMembersDeps{PaymentStore: ps}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ps.gotFrom.Equal(now) {
		t.Errorf("from = %v, want %v", ps.gotFrom, now)
	}
	if want := now.AddDate(0, 0, 7); !ps.gotTo.Equal(want) {
		t.Errorf("to = %v, want %v", ps.gotTo, want)
	}
}

// TestQueryGetExpiringMembers_DedupAndDays verifies one row per member and the
// rounded-up day count.
func TestQueryGetExpiringMembers_DedupAndDays(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	ps := &mockExpiringPaymentStore{
		rows: []paymentStore.WithMember{
			{
				Payment:   payment.Payment{MemberID: "m1", ExpiresAt: now.Add(36 * time.Hour)},
				FirstName: "Ana", LastName: "Torres", Contact: "a@t.com",
			},
			{
				// Same member, later expiration; must be skipped.
				Payment: payment.Payment{MemberID: "m1", ExpiresAt: now.Add(120 * time.Hour)},
			},
			{
				Payment:   payment.Payment{MemberID: "m2", ExpiresAt: now.Add(96 * time.Hour)},
				FirstName: "Bruno", LastName: "Silva", Contact: "b@s.com",
			},
		},
	}

	rows, err := QueryGetExpiringMembers(context.Background(), GetExpiringMembersDeps{PaymentStore: ps}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (one per member)", len(rows))
	}
	if rows[0].MemberID != "m1" || rows[1].MemberID != "m2" {
		t.Errorf("unexpected order: %s, %s", rows[0].MemberID, rows[1].MemberID)
	}
	// 36 hours rounds up to 2 days
	if rows[0].DaysLeft != 2 {
		t.Errorf("m1 DaysLeft = %d, want 2", rows[0].DaysLeft)
	}
	if rows[1].DaysLeft != 4 {
		t.Errorf("m2 DaysLeft = %d, want 4", rows[1].DaysLeft)
	}
	if rows[0].FirstName != "Ana" || rows[0].Contact != "a@t.com" {
		t.Errorf("member fields not carried: %+v", rows[0])
	}
}
