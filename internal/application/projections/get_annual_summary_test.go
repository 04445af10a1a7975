package projections

import (
	"context"
	"testing"

	"gymdesk/internal/domain/payment"
)

type mockAnnualPaymentStore struct {
	payments []payment.Payment
}

// ListByYear returns all seeded payments.
// PRE: year >= 1
// POST: Returns the seeded slice
func (m *mockAnnualPaymentStore) ListByYear(_ context.Context, _ int) ([]payment.Payment, error) {
	return m.payments, nil
}

// TestQueryGetAnnualSummary_EmptyYear verifies twelve zero rows with no growth markers.
func TestQueryGetAnnualSummary_EmptyYear(t *testing.T) {
	deps := GetAnnualSummaryDeps{PaymentStore: &mockAnnualPaymentStore{}}

	res, err := QueryGetAnnualSummary(context.Background(), GetAnnualSummaryQuery{Year: 2026}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Months) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(res.Months))
	}
	for i, row := range res.Months {
		if row.IncomeCents != 0 || row.PayerCount != 0 {
			t.Errorf("month %d: expected zero totals, got %+v", i, row)
		}
		// 0 vs 0 is not "new"; every row stays unmarked
		if row.GrowthKind != GrowthNone {
			t.Errorf("month %d: GrowthKind = %q, want none", i, row.GrowthKind)
		}
	}
	if res.Months[0].Period != "2026-01" || res.Months[11].Period != "2026-12" {
		t.Errorf("rows out of order: %v .. %v", res.Months[0].Period, res.Months[11].Period)
	}
	if res.TotalIncomeCents != 0 || res.TotalPayments != 0 {
		t.Errorf("expected zero totals, got %+v", res)
	}
}

// TestQueryGetAnnualSummary_GrowthKinds verifies the sequential growth rules.
func TestQueryGetAnnualSummary_GrowthKinds(t *testing.T) {
	deps := GetAnnualSummaryDeps{PaymentStore: &mockAnnualPaymentStore{
		payments: []payment.Payment{
			{MemberID: "a", Period: "2026-01", AmountCents: 2000},
			{MemberID: "a", Period: "2026-02", AmountCents: 3000},
			{MemberID: "b", Period: "2026-02", AmountCents: 1000},
			// March empty, April resumes
			{MemberID: "a", Period: "2026-04", AmountCents: 2000},
		},
	}}

	res, err := QueryGetAnnualSummary(context.Background(), GetAnnualSummaryQuery{Year: 2026}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jan, feb, mar, apr, may := res.Months[0], res.Months[1], res.Months[2], res.Months[3], res.Months[4]

	// First row never has a comparison
	if jan.GrowthKind != GrowthNone {
		t.Errorf("January GrowthKind = %q, want none", jan.GrowthKind)
	}
	// 4000 vs 2000 = +100, whole number
	if feb.GrowthKind != GrowthPercent || feb.GrowthPercent != 100 {
		t.Errorf("February growth = %+v", feb)
	}
	if feb.IncomeCents != 4000 || feb.PayerCount != 2 {
		t.Errorf("February totals = %+v", feb)
	}
	// 0 vs 4000 = -100
	if mar.GrowthKind != GrowthPercent || mar.GrowthPercent != -100 {
		t.Errorf("March growth = %+v", mar)
	}
	// Activity after an empty month is marked new, not a percentage
	if apr.GrowthKind != GrowthNew {
		t.Errorf("April GrowthKind = %q, want new", apr.GrowthKind)
	}
	// Empty month after activity gets a percentage vs April
	if may.GrowthKind != GrowthPercent || may.GrowthPercent != -100 {
		t.Errorf("May growth = %+v", may)
	}

	if res.TotalIncomeCents != 8000 || res.TotalPayments != 4 {
		t.Errorf("totals = %d cents / %d payments", res.TotalIncomeCents, res.TotalPayments)
	}
}
