package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/member"
)

// MemberStoreForDelete defines the store interface needed by DeleteMember.
type MemberStoreForDelete interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Delete(ctx context.Context, id string) error
}

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	MemberID string
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore MemberStoreForDelete
}

// ExecuteDeleteMember removes a member permanently. Their payments go with
// them via the foreign key cascade.
// PRE: MemberID exists
// POST: Member row and all payment rows removed
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	// Look up first so a missing ID surfaces as not-found, not as a silent no-op.
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}

	if err := deps.MemberStore.Delete(ctx, m.ID); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_deleted", "member_id", m.ID)
	return nil
}
