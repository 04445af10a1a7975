package projections

import (
	"context"
	"time"

	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/domain/period"
)

// HistoryPaymentStore defines the payment store interface needed by the history projection.
type HistoryPaymentStore interface {
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]paymentStore.WithMember, error)
}

// GetPaymentHistoryQuery carries input for the payment history projection.
type GetPaymentHistoryQuery struct {
	Period period.Key
}

// GetPaymentHistoryDeps holds dependencies for the history projection.
type GetPaymentHistoryDeps struct {
	PaymentStore HistoryPaymentStore
}

// PaymentHistoryRow is one payment with the member's display name.
type PaymentHistoryRow struct {
	ID          string
	MemberID    string
	MemberName  string
	Period      period.Key
	AmountCents int64
	Method      string
	PaidAt      time.Time
	ExpiresAt   time.Time
}

// PaymentHistoryResult carries the output of the history projection.
type PaymentHistoryResult struct {
	Period     period.Key
	Rows       []PaymentHistoryRow
	TotalCents int64
	Count      int
}

// QueryGetPaymentHistory lists the payments recorded during the selected
// calendar month, newest first. Selection is by when the payment was made,
// not which billing month it covers: dues for July paid in June show up
// under June.
// PRE: query.Period is a valid period key
// POST: Rows ordered by PaidAt descending; TotalCents is an exact sum
func QueryGetPaymentHistory(ctx context.Context, query GetPaymentHistoryQuery, deps GetPaymentHistoryDeps) (PaymentHistoryResult, error) {
	from, to := query.Period.Bounds()
	rows, err := deps.PaymentStore.ListPaidBetween(ctx, from, to)
	if err != nil {
		return PaymentHistoryResult{}, err
	}

	result := PaymentHistoryResult{Period: query.Period, Count: len(rows)}
	for _, row := range rows {
		result.TotalCents += row.AmountCents
		result.Rows = append(result.Rows, PaymentHistoryRow{
			ID:          row.ID,
			MemberID:    row.MemberID,
			MemberName:  row.FirstName + " " + row.LastName,
			Period:      row.Period,
			AmountCents: row.AmountCents,
			Method:      row.Method,
			PaidAt:      row.PaidAt,
			ExpiresAt:   row.ExpiresAt,
		})
	}
	return result, nil
}
