package member

import (
	"context"

	domain "gymdesk/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
// Status-based filtering (active vs overdue) is derived from payments by
// the caller, not here; Active filters the soft-delete flag only.
type ListFilter struct {
	Limit  int
	Offset int
	Active *bool  // nil means both
	Search string // matches first name, last name, or contact
	Sort   string
	Dir    string
}
