package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/payment"
)

// PaymentStoreForEdit defines the store interface needed by EditPaymentDates.
type PaymentStoreForEdit interface {
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	Save(ctx context.Context, p payment.Payment) error
}

// EditPaymentDatesInput carries input for the orchestrator.
type EditPaymentDatesInput struct {
	PaymentID string
	PaidAt    time.Time
	ExpiresAt time.Time
}

// EditPaymentDatesDeps holds dependencies for EditPaymentDates.
type EditPaymentDatesDeps struct {
	PaymentStore PaymentStoreForEdit
}

// ExecuteEditPaymentDates adjusts when a payment was made and when its
// coverage ends. Amount, member, and billing month are immutable after
// creation; a mistake there means deleting the member's payment and
// registering a new one.
// PRE: PaymentID exists; ExpiresAt after PaidAt
// POST: PaidAt and ExpiresAt updated, all other fields unchanged
func ExecuteEditPaymentDates(ctx context.Context, input EditPaymentDatesInput, deps EditPaymentDatesDeps) error {
	p, err := deps.PaymentStore.GetByID(ctx, input.PaymentID)
	if err != nil {
		return err
	}

	p.PaidAt = input.PaidAt
	p.ExpiresAt = input.ExpiresAt

	if err := p.Validate(); err != nil {
		return err
	}

	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return err
	}

	slog.Info("payment_event", "event", "payment_dates_edited", "payment_id", p.ID)
	return nil
}
