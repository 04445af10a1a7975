package projections

import (
	"context"
	"sort"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/member"
)

// Derived membership status values.
const (
	StatusActive  = "active"  // some payment still covers today
	StatusOverdue = "overdue" // every payment expired, or none at all
)

// MemberListMemberStore defines the member store interface needed by the list projection.
type MemberListMemberStore interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// MemberListPaymentStore defines the payment store interface needed by the list projection.
type MemberListPaymentStore interface {
	ListActiveMemberIDs(ctx context.Context, now time.Time) ([]string, error)
}

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Status  string // "", "active", or "overdue"
	Search  string
	Sort    string // first_name, last_name, created_at, status
	Dir     string // asc, desc
	Page    int
	PerPage int
}

// MemberWithStatus is a member with the payment-derived status attached.
type MemberWithStatus struct {
	ID        string
	FirstName string
	LastName  string
	Contact   string
	Enrolled  bool // soft-delete flag; false hides the member from dues tracking
	Status    string
	CreatedAt time.Time
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members  []MemberWithStatus
	PageInfo listutil.PageInfo
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore  MemberListMemberStore
	PaymentStore MemberListPaymentStore
}

// QueryGetMemberList retrieves members with their derived status, filtered,
// sorted, and paginated. Status is recomputed from payments on every call;
// nothing is cached across mutations.
// PRE: Valid query parameters
// POST: Returns one page of members plus pagination metadata
// INVARIANT: A member is active iff some payment's expiration reaches now
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps, now time.Time) (GetMemberListResult, error) {
	storeSort := query.Sort
	if storeSort == "status" {
		// Status is derived, so the store cannot order by it.
		storeSort = ""
	}
	members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{
		Search: query.Search,
		Sort:   storeSort,
		Dir:    query.Dir,
	})
	if err != nil {
		return GetMemberListResult{}, err
	}

	activeIDs, err := deps.PaymentStore.ListActiveMemberIDs(ctx, now)
	if err != nil {
		return GetMemberListResult{}, err
	}
	activeSet := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		activeSet[id] = true
	}

	var rows []MemberWithStatus
	for _, m := range members {
		status := StatusOverdue
		if activeSet[m.ID] {
			status = StatusActive
		}
		if query.Status != "" && query.Status != status {
			continue
		}
		rows = append(rows, MemberWithStatus{
			ID:        m.ID,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Contact:   m.Contact,
			Enrolled:  m.Active,
			Status:    status,
			CreatedAt: m.CreatedAt,
		})
	}

	if query.Sort == "status" {
		// Overdue first so lapsed members surface at the top.
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Status == StatusOverdue && rows[j].Status == StatusActive
		})
	}

	pageInfo := listutil.NewPageInfo(query.Page, query.PerPage, len(rows))
	start := pageInfo.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pageInfo.PerPage
	if end > len(rows) {
		end = len(rows)
	}

	return GetMemberListResult{
		Members:  rows[start:end],
		PageInfo: pageInfo,
	}, nil
}
