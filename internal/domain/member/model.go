package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxContactLength = 254
)

// Domain errors
var (
	ErrEmptyFirstName = errors.New("member first name cannot be empty")
	ErrEmptyLastName  = errors.New("member last name cannot be empty")
	ErrEmptyContact   = errors.New("member contact cannot be empty")
)

// Member holds state for the concept. Active is a soft-delete marker;
// whether a member is paid up is derived from payments, not stored here.
type Member struct {
	ID        string
	FirstName string
	LastName  string
	Contact   string // phone or email, free-form
	Notes     string // free text, may contain medical information
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: FirstName, LastName, Contact must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if len(m.FirstName) > MaxNameLength {
		return errors.New("member first name cannot exceed 100 characters")
	}
	if strings.TrimSpace(m.LastName) == "" {
		return ErrEmptyLastName
	}
	if len(m.LastName) > MaxNameLength {
		return errors.New("member last name cannot exceed 100 characters")
	}
	if strings.TrimSpace(m.Contact) == "" {
		return ErrEmptyContact
	}
	if len(m.Contact) > MaxContactLength {
		return errors.New("member contact cannot exceed 254 characters")
	}
	return nil
}

// FullName returns "First Last" for display and search results.
// INVARIANT: Member fields are not mutated
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
