package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/member"

	"github.com/google/uuid"
)

// MemberStoreForAdd defines the store interface needed by AddMember.
type MemberStoreForAdd interface {
	Save(ctx context.Context, m member.Member) error
}

// AddMemberInput carries input for the orchestrator.
type AddMemberInput struct {
	FirstName string
	LastName  string
	Contact   string
	Notes     string
}

// AddMemberDeps holds dependencies for AddMember.
type AddMemberDeps struct {
	MemberStore MemberStoreForAdd
}

// ExecuteAddMember coordinates member enrollment.
// PRE: Non-empty first name, last name, and contact
// POST: Member created with generated ID, Active=true
func ExecuteAddMember(ctx context.Context, input AddMemberInput, deps AddMemberDeps) (string, error) {
	m := member.Member{
		ID:        uuid.New().String(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Contact:   input.Contact,
		Notes:     input.Notes,
		Active:    true,
		CreatedAt: time.Now(),
	}

	// Validate domain rules (trims and length caps)
	if err := m.Validate(); err != nil {
		return "", err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return "", err
	}

	slog.Info("member_event", "event", "member_added", "member_id", m.ID)

	return m.ID, nil
}
