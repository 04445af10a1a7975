package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/member"
)

// MemberStoreForEdit defines the store interface needed by the member edit orchestrators.
type MemberStoreForEdit interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// EditMemberInput carries input for the orchestrator.
type EditMemberInput struct {
	MemberID  string
	FirstName string
	LastName  string
	Contact   string
}

// EditMemberDeps holds dependencies for EditMember.
type EditMemberDeps struct {
	MemberStore MemberStoreForEdit
}

// ExecuteEditMember updates a member's name and contact details.
// Notes and the active flag have their own operations and are left untouched.
// PRE: MemberID exists; non-empty first name, last name, and contact
// POST: Name and contact updated, all other fields unchanged
func ExecuteEditMember(ctx context.Context, input EditMemberInput, deps EditMemberDeps) error {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}

	m.FirstName = input.FirstName
	m.LastName = input.LastName
	m.Contact = input.Contact

	if err := m.Validate(); err != nil {
		return err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_edited", "member_id", m.ID)
	return nil
}

// SaveNotesInput carries input for the notes orchestrator.
type SaveNotesInput struct {
	MemberID string
	Notes    string
}

// ExecuteSaveNotes replaces a member's free-text notes.
// PRE: MemberID exists
// POST: Notes updated, all other fields unchanged
func ExecuteSaveNotes(ctx context.Context, input SaveNotesInput, deps EditMemberDeps) error {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}

	m.Notes = input.Notes

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_notes_saved", "member_id", m.ID)
	return nil
}

// SetMemberActiveInput carries input for the activation orchestrator.
type SetMemberActiveInput struct {
	MemberID string
	Active   bool
}

// ExecuteSetMemberActive flips the enrollment flag. Deactivated members keep
// their payment history and can be reactivated later.
// PRE: MemberID exists
// POST: Active flag set, all other fields unchanged
func ExecuteSetMemberActive(ctx context.Context, input SetMemberActiveInput, deps EditMemberDeps) error {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}

	m.Active = input.Active

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_active_set", "member_id", m.ID, "active", input.Active)
	return nil
}
