package projections

import (
	"context"
	"testing"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	domainMember "gymdesk/internal/domain/member"
)

type mockMemberListMemberStore struct {
	members []domainMember.Member
}

// List returns all seeded members.
// PRE: filter is valid
// POST: Returns the seeded slice
func (m *mockMemberListMemberStore) List(_ context.Context, _ memberStore.ListFilter) ([]domainMember.Member, error) {
	return m.members, nil
}

type mockMemberListPaymentStore struct {
	activeIDs []string
}

// ListActiveMemberIDs returns the seeded active set.
// PRE: none
// POST: Returns the seeded IDs
func (m *mockMemberListPaymentStore) ListActiveMemberIDs(_ context.Context, _ time.Time) ([]string, error) {
	return m.activeIDs, nil
}

func memberListDeps(activeIDs []string, members ...domainMember.Member) GetMemberListDeps {
	return GetMemberListDeps{
		MemberStore:  &mockMemberListMemberStore{members: members},
		PaymentStore: &mockMemberListPaymentStore{activeIDs: activeIDs},
	}
}

// TestQueryGetMemberList_DerivesStatus verifies the payment-derived status.
func TestQueryGetMemberList_DerivesStatus(t *testing.T) {
	m1 := domainMember.Member{ID: "m1", FirstName: "Ana", LastName: "Torres", Contact: "a@t.com", Active: true}
	m2 := domainMember.Member{ID: "m2", FirstName: "Bruno", LastName: "Silva", Contact: "b@s.com", Active: true}
	deps := memberListDeps([]string{"m1"}, m1, m2)

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{}, deps, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Members) != 2 {
		t.Fatalf("members=%d want 2", len(res.Members))
	}
	if res.Members[0].Status != StatusActive {
		t.Errorf("m1 status = %q, want active", res.Members[0].Status)
	}
	if res.Members[1].Status != StatusOverdue {
		t.Errorf("m2 status = %q, want overdue (no unexpired payment)", res.Members[1].Status)
	}
}

// TestQueryGetMemberList_StatusFilter verifies filtering on the derived status.
func TestQueryGetMemberList_StatusFilter(t *testing.T) {
	m1 := domainMember.Member{ID: "m1", FirstName: "Ana", LastName: "Torres", Contact: "a@t.com", Active: true}
	m2 := domainMember.Member{ID: "m2", FirstName: "Bruno", LastName: "Silva", Contact: "b@s.com", Active: true}
	deps := memberListDeps([]string{"m1"}, m1, m2)

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{Status: StatusOverdue}, deps, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Members) != 1 || res.Members[0].ID != "m2" {
		t.Errorf("expected only m2, got %+v", res.Members)
	}
	if res.PageInfo.Total != 1 {
		t.Errorf("Total = %d, want 1 (after filter)", res.PageInfo.Total)
	}
}

// TestQueryGetMemberList_StatusSort verifies overdue members sort first.
func TestQueryGetMemberList_StatusSort(t *testing.T) {
	m1 := domainMember.Member{ID: "m1", FirstName: "Ana", LastName: "Torres", Contact: "a@t.com", Active: true}
	m2 := domainMember.Member{ID: "m2", FirstName: "Bruno", LastName: "Silva", Contact: "b@s.com", Active: true}
	m3 := domainMember.Member{ID: "m3", FirstName: "Carla", LastName: "Anand", Contact: "c@a.com", Active: true}
	deps := memberListDeps([]string{"m1", "m3"}, m1, m2, m3)

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{Sort: "status"}, deps, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Members[0].ID != "m2" {
		t.Errorf("expected overdue member first, got %s", res.Members[0].ID)
	}
}

// TestQueryGetMemberList_Pagination verifies page slicing of the filtered rows.
func TestQueryGetMemberList_Pagination(t *testing.T) {
	var members []domainMember.Member
	for _, id := range []string{"m1", "m2", "m3"} {
		members = append(members, domainMember.Member{ID: id, FirstName: id, LastName: id, Contact: id, Active: true})
	}
	deps := memberListDeps(nil, members...)

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{Page: 2, PerPage: 10}, deps, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Page beyond the data clamps back to the last page
	if res.PageInfo.Page != 1 || len(res.Members) != 3 {
		t.Errorf("expected clamped page with all rows, got page=%d rows=%d", res.PageInfo.Page, len(res.Members))
	}
	if res.PageInfo.Total != 3 {
		t.Errorf("Total = %d, want 3", res.PageInfo.Total)
	}
}
