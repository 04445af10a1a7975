package projections

import (
	"context"
	"time"

	paymentStore "gymdesk/internal/adapters/storage/payment"
)

// ExpiringPaymentStore defines the payment store interface needed by the expiring projection.
type ExpiringPaymentStore interface {
	ListExpiring(ctx context.Context, from, to time.Time) ([]paymentStore.WithMember, error)
}

// GetExpiringMembersDeps holds dependencies for the expiring members projection.
type GetExpiringMembersDeps struct {
	PaymentStore ExpiringPaymentStore
}

// ExpiringMemberRow is one member whose coverage lapses within the window.
type ExpiringMemberRow struct {
	MemberID  string
	FirstName string
	LastName  string
	Contact   string
	ExpiresAt time.Time
	DaysLeft  int
}

// QueryGetExpiringMembers lists members whose coverage ends within the next
// seven days, soonest first. A member with several payments in the window
// appears once, with the earliest expiration.
// PRE: none
// POST: Rows are unique per member, ordered by expiration ascending
func QueryGetExpiringMembers(ctx context.Context, deps GetExpiringMembersDeps, now time.Time) ([]ExpiringMemberRow, error) {
	rows, err := deps.PaymentStore.ListExpiring(ctx, now, now.AddDate(0, 0, ExpiringWindowDays))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []ExpiringMemberRow
	for _, row := range rows {
		// Rows arrive soonest-first, so the first hit per member is the
		// earliest expiration.
		if seen[row.MemberID] {
			continue
		}
		seen[row.MemberID] = true
		result = append(result, ExpiringMemberRow{
			MemberID:  row.MemberID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Contact:   row.Contact,
			ExpiresAt: row.ExpiresAt,
			DaysLeft:  row.DaysLeft(now),
		})
	}
	return result, nil
}
