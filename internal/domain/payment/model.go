package payment

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gymdesk/internal/domain/period"
)

// Payment method constants
const (
	MethodCash     = "cash"
	MethodTransfer = "transfer"
	MethodCard     = "card"
	MethodOther    = "other"
)

// DefaultCoverageDays is the suggested coverage window when no expiration
// is supplied: payment date plus 30 days.
const DefaultCoverageDays = 30

// ValidMethods contains all accepted payment methods.
var ValidMethods = []string{MethodCash, MethodTransfer, MethodCard, MethodOther}

// Domain errors
var (
	ErrNonPositiveAmount = errors.New("payment amount must be greater than zero")
	ErrInvalidMethod     = errors.New("payment method must be one of: cash, transfer, card, other")
	ErrExpiresBeforePaid = errors.New("expiration date must be after the payment date")
	ErrEmptyMemberID     = errors.New("payment member id cannot be empty")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDuplicatePayment  = errors.New("a payment for this member and month is already registered")
)

// Payment holds state for one monthly dues payment.
// AmountCents is in integer minor units; no floats touch stored amounts.
type Payment struct {
	ID          string
	MemberID    string
	Period      period.Key // the billing month the dues cover
	AmountCents int64
	Method      string
	PaidAt      time.Time
	ExpiresAt   time.Time // end of the coverage window
	CreatedAt   time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: AmountCents > 0, ExpiresAt strictly after PaidAt
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if _, err := period.Parse(string(p.Period)); err != nil {
		return err
	}
	if p.AmountCents <= 0 {
		return ErrNonPositiveAmount
	}
	if !isValidMethod(p.Method) {
		return ErrInvalidMethod
	}
	if !p.ExpiresAt.After(p.PaidAt) {
		return ErrExpiresBeforePaid
	}
	return nil
}

// CoversAt returns true if the payment's coverage window reaches the instant.
// INVARIANT: Payment fields are not mutated
func (p *Payment) CoversAt(now time.Time) bool {
	return !p.ExpiresAt.Before(now)
}

// ActiveMemberIDs returns the set of member IDs with at least one payment
// whose coverage reaches now. Any one unexpired payment suffices; there is
// no latest-payment selection.
// PRE: none
// POST: Returns a set; members with zero payments are absent
func ActiveMemberIDs(payments []Payment, now time.Time) map[string]bool {
	active := make(map[string]bool)
	for _, p := range payments {
		if p.CoversAt(now) {
			active[p.MemberID] = true
		}
	}
	return active
}

// ParseAmountCents converts a decimal string like "25.50" to integer cents.
// A third decimal digit rounds half-up; more than three decimals is rejected.
// PRE: raw is a non-empty decimal string, '.' or ',' separator
// POST: Returns the amount in cents, or ErrInvalidAmount
func ParseAmountCents(raw string) (int64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := strings.HasPrefix(s, "-")
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("%w: too many decimal places", ErrInvalidAmount)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := units * 100

	if frac != "" {
		for _, c := range frac {
			if c < '0' || c > '9' {
				return 0, ErrInvalidAmount
			}
		}
		padded := frac + strings.Repeat("0", 3-len(frac))
		milli, err := strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		fracCents := milli / 10
		if milli%10 >= 5 {
			fracCents++
		}
		if neg {
			cents -= fracCents
		} else {
			cents += fracCents
		}
	}
	return cents, nil
}

// FormatCents renders integer cents as a plain decimal string, e.g. "25.50".
// PRE: none
// POST: Always two decimal places
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// DaysLeft returns the whole days from now until the expiration, rounded up.
// PRE: none
// POST: Negative when already expired
func (p *Payment) DaysLeft(now time.Time) int {
	return int(math.Ceil(p.ExpiresAt.Sub(now).Hours() / 24))
}

func isValidMethod(method string) bool {
	for _, m := range ValidMethods {
		if m == method {
			return true
		}
	}
	return false
}
