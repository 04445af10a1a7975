package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// ExpiringWindowDays is how far ahead the dashboard and reminders look
// for memberships about to lapse.
const ExpiringWindowDays = 7

// DashboardPaymentStore defines the payment store interface needed by the dashboard projection.
type DashboardPaymentStore interface {
	ListByPeriod(ctx context.Context, p period.Key) ([]payment.Payment, error)
	ListActiveMemberIDs(ctx context.Context, now time.Time) ([]string, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]paymentStore.WithMember, error)
}

// DashboardMemberStore defines the member store interface needed by the dashboard projection.
type DashboardMemberStore interface {
	Count(ctx context.Context, filter memberStore.ListFilter) (int, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Period period.Key
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	PaymentStore DashboardPaymentStore
	MemberStore  DashboardMemberStore
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Period          period.Key
	PeriodName      string
	IncomeCents     int64
	PayerCount      int
	IncomeGrowth    GrowthResult
	MemberCount     int // enrolled members (soft-delete active)
	OverdueCount    int
	ExpiringCount   int // distinct members lapsing within the window
	MethodBreakdown map[string]int
	Retention       RetentionResult
}

// QueryGetDashboard aggregates the month's income, payer activity, overdue
// and expiring counts, and retention against the previous month. The five
// independent reads fan out concurrently; any failure fails the whole
// projection so callers never apply a partial result.
// PRE: query.Period is a valid period key
// POST: Returns a fully populated result, or a zero value and the first error
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	var (
		curPayments  []payment.Payment
		prevPayments []payment.Payment
		activeIDs    []string
		memberCount  int
		expiring     []paymentStore.WithMember
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		curPayments, err = deps.PaymentStore.ListByPeriod(gctx, query.Period)
		return err
	})
	g.Go(func() error {
		var err error
		prevPayments, err = deps.PaymentStore.ListByPeriod(gctx, query.Period.Prev())
		return err
	})
	g.Go(func() error {
		var err error
		activeIDs, err = deps.PaymentStore.ListActiveMemberIDs(gctx, now)
		return err
	})
	g.Go(func() error {
		active := true
		var err error
		memberCount, err = deps.MemberStore.Count(gctx, memberStore.ListFilter{Active: &active})
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = deps.PaymentStore.ListExpiring(gctx, now, now.AddDate(0, 0, ExpiringWindowDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardResult{}, err
	}

	cur := MonthlyStats(curPayments, query.Period)
	prev := MonthlyStats(prevPayments, query.Period.Prev())

	// Overdue = enrolled members without any unexpired payment. Clamped:
	// payments can reference members deactivated after paying.
	overdue := memberCount - len(activeIDs)
	if overdue < 0 {
		overdue = 0
	}

	expiringMembers := make(map[string]bool)
	for _, row := range expiring {
		expiringMembers[row.MemberID] = true
	}

	return DashboardResult{
		Period:          query.Period,
		PeriodName:      query.Period.DisplayName(),
		IncomeCents:     cur.IncomeCents,
		PayerCount:      cur.PayerCount,
		IncomeGrowth:    Growth(cur.IncomeCents, prev.IncomeCents),
		MemberCount:     memberCount,
		OverdueCount:    overdue,
		ExpiringCount:   len(expiringMembers),
		MethodBreakdown: MethodBreakdown(curPayments),
		Retention:       Retention(payerSet(prevPayments), payerSet(curPayments)),
	}, nil
}
