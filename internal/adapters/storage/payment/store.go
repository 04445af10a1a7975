package payment

import (
	"context"
	"time"

	domain "gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// WithMember is a payment row joined with member display fields.
type WithMember struct {
	domain.Payment
	FirstName string
	LastName  string
	Contact   string
}

// Store persists Payment state and serves the derived-statistics queries.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	ExistsForMemberPeriod(ctx context.Context, memberID string, p period.Key) (bool, error)
	ListByPeriod(ctx context.Context, p period.Key) ([]domain.Payment, error)
	ListByYear(ctx context.Context, year int) ([]domain.Payment, error)
	ListActiveMemberIDs(ctx context.Context, now time.Time) ([]string, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]WithMember, error)
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]WithMember, error)
	Count(ctx context.Context) (int, error)
}
