package projections

import (
	"context"
	"math"

	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// Growth display kinds for annual rows.
const (
	GrowthNone    = "none"    // no meaningful comparison (first row, or 0 vs 0)
	GrowthNew     = "new"     // previous month empty, this month has payments
	GrowthPercent = "percent" // whole-number percentage vs previous month
)

// AnnualPaymentStore defines the payment store interface needed by the annual summary.
type AnnualPaymentStore interface {
	ListByYear(ctx context.Context, year int) ([]payment.Payment, error)
}

// GetAnnualSummaryQuery carries input for the annual summary projection.
type GetAnnualSummaryQuery struct {
	Year int
}

// GetAnnualSummaryDeps holds dependencies for the annual summary projection.
type GetAnnualSummaryDeps struct {
	PaymentStore AnnualPaymentStore
}

// AnnualMonthRow is one month of the year breakdown.
type AnnualMonthRow struct {
	Period        period.Key
	MonthName     string
	IncomeCents   int64
	PayerCount    int
	GrowthKind    string
	GrowthPercent float64 // meaningful only when GrowthKind is GrowthPercent
}

// AnnualSummaryResult carries the output of the annual summary projection.
type AnnualSummaryResult struct {
	Year             int
	Months           [12]AnnualMonthRow
	TotalIncomeCents int64
	TotalPayments    int
}

// QueryGetAnnualSummary produces exactly twelve rows, January through
// December, folding the year's payments into pre-initialized zero rows. A
// year with no payments still yields twelve rows. Growth is computed
// sequentially within the produced sequence, so January never has one.
// PRE: query.Year >= 1
// POST: Returns twelve ordered rows, or a zero value and an error
func QueryGetAnnualSummary(ctx context.Context, query GetAnnualSummaryQuery, deps GetAnnualSummaryDeps) (AnnualSummaryResult, error) {
	payments, err := deps.PaymentStore.ListByYear(ctx, query.Year)
	if err != nil {
		return AnnualSummaryResult{}, err
	}

	result := AnnualSummaryResult{Year: query.Year}
	keys := period.KeysOfYear(query.Year)
	for i, key := range keys {
		result.Months[i] = AnnualMonthRow{
			Period:     key,
			MonthName:  key.DisplayName(),
			GrowthKind: GrowthNone,
		}
	}

	payersByMonth := make(map[period.Key]map[string]bool)
	for _, p := range payments {
		for i, key := range keys {
			if p.Period != key {
				continue
			}
			result.Months[i].IncomeCents += p.AmountCents
			if payersByMonth[key] == nil {
				payersByMonth[key] = make(map[string]bool)
			}
			payersByMonth[key][p.MemberID] = true
			result.TotalIncomeCents += p.AmountCents
			result.TotalPayments++
		}
	}
	for i, key := range keys {
		result.Months[i].PayerCount = len(payersByMonth[key])
	}

	for i := 1; i < 12; i++ {
		prev := result.Months[i-1].IncomeCents
		cur := &result.Months[i]
		if prev == 0 {
			if cur.PayerCount > 0 {
				cur.GrowthKind = GrowthNew
			}
			continue
		}
		cur.GrowthKind = GrowthPercent
		cur.GrowthPercent = math.Round(float64(cur.IncomeCents-prev) / float64(prev) * 100)
	}

	return result, nil
}
