package projections

import (
	"math"

	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// MonthlyTotals summarizes the payments recorded against one billing month.
type MonthlyTotals struct {
	IncomeCents int64
	PayerCount  int
}

// GrowthResult is a percentage change with its styling polarity.
type GrowthResult struct {
	Percent  float64
	Positive bool // selects success styling; false for a zero baseline with no payments
}

// RetentionResult compares the payer sets of two consecutive months.
type RetentionResult struct {
	Retained    int
	New         int
	Churned     int
	RatePercent float64
}

// MonthlyStats sums the payments whose billing month matches p.
// PRE: none
// POST: IncomeCents is an exact integer sum; PayerCount counts distinct members
func MonthlyStats(payments []payment.Payment, p period.Key) MonthlyTotals {
	var total MonthlyTotals
	payers := make(map[string]bool)
	for _, pay := range payments {
		if pay.Period != p {
			continue
		}
		total.IncomeCents += pay.AmountCents
		payers[pay.MemberID] = true
	}
	total.PayerCount = len(payers)
	return total
}

// Growth computes the percentage change from prev to cur, one decimal.
// PRE: none
// POST: prev==0 yields 100%/positive when cur>0 and 0%/non-positive otherwise
func Growth(cur, prev int64) GrowthResult {
	if prev == 0 {
		if cur > 0 {
			return GrowthResult{Percent: 100, Positive: true}
		}
		return GrowthResult{Percent: 0, Positive: false}
	}
	pct := float64(cur-prev) / float64(prev) * 100
	pct = math.Round(pct*10) / 10
	return GrowthResult{Percent: pct, Positive: pct >= 0}
}

// Retention compares the previous month's payer set against the current one.
// PRE: none
// POST: RatePercent = retained/|prev|*100 rounded to one decimal, 0 when prev is empty
func Retention(prevIDs, curIDs map[string]bool) RetentionResult {
	var r RetentionResult
	for id := range prevIDs {
		if curIDs[id] {
			r.Retained++
		} else {
			r.Churned++
		}
	}
	for id := range curIDs {
		if !prevIDs[id] {
			r.New++
		}
	}
	if len(prevIDs) > 0 {
		rate := float64(r.Retained) / float64(len(prevIDs)) * 100
		r.RatePercent = math.Round(rate*10) / 10
	}
	return r
}

// MethodBreakdown counts payments per method. A missing method counts as cash.
// PRE: none
// POST: Map keys are valid method names
func MethodBreakdown(payments []payment.Payment) map[string]int {
	counts := make(map[string]int)
	for _, p := range payments {
		method := p.Method
		if method == "" {
			method = payment.MethodCash
		}
		counts[method]++
	}
	return counts
}

// payerSet extracts the distinct member IDs from a payment slice.
func payerSet(payments []payment.Payment) map[string]bool {
	set := make(map[string]bool)
	for _, p := range payments {
		set[p.MemberID] = true
	}
	return set
}
