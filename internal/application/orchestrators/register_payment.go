package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"

	"github.com/google/uuid"
)

// PaymentStoreForRegister defines the store interface needed by RegisterPayment.
type PaymentStoreForRegister interface {
	Save(ctx context.Context, p payment.Payment) error
	ExistsForMemberPeriod(ctx context.Context, memberID string, p period.Key) (bool, error)
}

// MemberStoreForRegisterPayment defines the member lookup needed by RegisterPayment.
type MemberStoreForRegisterPayment interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// RegisterPaymentInput carries input for the orchestrator.
type RegisterPaymentInput struct {
	MemberID    string
	Period      period.Key
	AmountCents int64
	Method      string
	PaidAt      time.Time
	ExpiresAt   time.Time
}

// RegisterPaymentDeps holds dependencies for RegisterPayment.
type RegisterPaymentDeps struct {
	PaymentStore PaymentStoreForRegister
	MemberStore  MemberStoreForRegisterPayment
}

// ExecuteRegisterPayment records a monthly dues payment.
// The duplicate check runs before any write; it is best effort, not a
// database constraint.
// PRE: Member exists; amount > 0; ExpiresAt after PaidAt
// POST: Payment persisted with generated ID
// INVARIANT: At most one payment per (member, period)
func ExecuteRegisterPayment(ctx context.Context, input RegisterPaymentInput, deps RegisterPaymentDeps) (string, error) {
	if _, err := deps.MemberStore.GetByID(ctx, input.MemberID); err != nil {
		return "", err
	}

	p := payment.Payment{
		ID:          uuid.New().String(),
		MemberID:    input.MemberID,
		Period:      input.Period,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		PaidAt:      input.PaidAt,
		ExpiresAt:   input.ExpiresAt,
		CreatedAt:   time.Now(),
	}
	if p.Method == "" {
		p.Method = payment.MethodCash
	}

	if err := p.Validate(); err != nil {
		return "", err
	}

	exists, err := deps.PaymentStore.ExistsForMemberPeriod(ctx, p.MemberID, p.Period)
	if err != nil {
		return "", err
	}
	if exists {
		return "", payment.ErrDuplicatePayment
	}

	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return "", err
	}

	slog.Info("payment_event", "event", "payment_registered",
		"payment_id", p.ID, "member_id", p.MemberID, "period", p.Period,
		"amount", payment.FormatCents(p.AmountCents))

	return p.ID, nil
}
