package member_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gymdesk/internal/adapters/storage"
	memberStore "gymdesk/internal/adapters/storage/member"
	domain "gymdesk/internal/domain/member"
)

func openStoreDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return db
}

func seedMember(t *testing.T, s *memberStore.SQLiteStore, id, first, last, contact string, active bool) {
	t.Helper()
	err := s.Save(context.Background(), domain.Member{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Contact:   contact,
		Active:    active,
		CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
}

// TestSQLiteStore_SaveAndGet verifies round-trip persistence.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	seedMember(t, s, "m1", "Ana", "Torres", "ana@example.com", true)

	got, err := s.GetByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Ana" || got.LastName != "Torres" || !got.Active {
		t.Errorf("unexpected member %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt round-trip")
	}
}

// TestSQLiteStore_SaveUpdates verifies upsert semantics.
func TestSQLiteStore_SaveUpdates(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	seedMember(t, s, "m1", "Ana", "Torres", "ana@example.com", true)

	m, _ := s.GetByID(context.Background(), "m1")
	m.Notes = "allergic to penicillin"
	m.Active = false
	if err := s.Save(context.Background(), m); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, _ := s.GetByID(context.Background(), "m1")
	if got.Notes != "allergic to penicillin" || got.Active {
		t.Errorf("update not applied: %+v", got)
	}

	count, _ := s.Count(context.Background(), memberStore.ListFilter{})
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
}

// TestSQLiteStore_GetByID_NotFound verifies missing rows surface an error.
func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	if _, err := s.GetByID(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing member")
	}
}

// TestSQLiteStore_List_SearchAndFilter verifies search and active filtering.
func TestSQLiteStore_List_SearchAndFilter(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	seedMember(t, s, "m1", "Ana", "Torres", "ana@example.com", true)
	seedMember(t, s, "m2", "Bruno", "Silva", "bruno@example.com", true)
	seedMember(t, s, "m3", "Carla", "Anand", "021 555 0100", false)

	// Search hits first name, last name, and contact
	got, err := s.List(context.Background(), memberStore.ListFilter{Search: "an"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("search 'an': expected 2 results, got %d", len(got))
	}

	active := true
	got, _ = s.List(context.Background(), memberStore.ListFilter{Active: &active})
	if len(got) != 2 {
		t.Errorf("active filter: expected 2 results, got %d", len(got))
	}

	inactive := false
	got, _ = s.List(context.Background(), memberStore.ListFilter{Active: &inactive})
	if len(got) != 1 || got[0].ID != "m3" {
		t.Errorf("inactive filter: expected m3, got %+v", got)
	}
}

// TestSQLiteStore_List_SortAndPage verifies ordering and pagination.
func TestSQLiteStore_List_SortAndPage(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	seedMember(t, s, "m1", "Ana", "Torres", "ana@example.com", true)
	seedMember(t, s, "m2", "Bruno", "Silva", "bruno@example.com", true)
	seedMember(t, s, "m3", "Carla", "Anand", "carla@example.com", true)

	// Default sort is last name ascending
	got, err := s.List(context.Background(), memberStore.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got[0].LastName != "Anand" || got[2].LastName != "Torres" {
		t.Errorf("default sort wrong: %v, %v, %v", got[0].LastName, got[1].LastName, got[2].LastName)
	}

	got, _ = s.List(context.Background(), memberStore.ListFilter{Sort: "first_name", Dir: "desc"})
	if got[0].FirstName != "Carla" {
		t.Errorf("first_name desc: expected Carla first, got %s", got[0].FirstName)
	}

	// Disallowed sort column falls back to the default order
	got, _ = s.List(context.Background(), memberStore.ListFilter{Sort: "contact; DROP TABLE member"})
	if len(got) != 3 {
		t.Errorf("expected fallback sort to return all rows, got %d", len(got))
	}

	got, _ = s.List(context.Background(), memberStore.ListFilter{Limit: 2, Offset: 2})
	if len(got) != 1 {
		t.Errorf("pagination: expected 1 row on last page, got %d", len(got))
	}
}

// TestSQLiteStore_Delete verifies hard delete.
func TestSQLiteStore_Delete(t *testing.T) {
	s := memberStore.NewSQLiteStore(openStoreDB(t))
	seedMember(t, s, "m1", "Ana", "Torres", "ana@example.com", true)

	if err := s.Delete(context.Background(), "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(context.Background(), "m1"); err == nil {
		t.Error("expected member gone after delete")
	}
}
