package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after InitDB.
var expectedTables = []string{
	"account",
	"member",
	"payment",
}

// TestInitDB_Fresh verifies the schema applies cleanly to an empty database.
func TestInitDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed on fresh db: %v", err)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestInitDB_Idempotent verifies that running InitDB twice produces no errors.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

// TestInitDB_DataSurvival verifies existing data survives a second InitDB run.
func TestInitDB_DataSurvival(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO member (id, first_name, last_name, contact, active, created_at) VALUES ('m1', 'Ana', 'Torres', 'ana@test.com', 1, '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert test member: %v", err)
	}

	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	var firstName string
	if err := db.QueryRow("SELECT first_name FROM member WHERE id = 'm1'").Scan(&firstName); err != nil {
		t.Fatalf("member data lost after re-init: %v", err)
	}
	if firstName != "Ana" {
		t.Errorf("first_name = %q, want %q", firstName, "Ana")
	}
}

// TestInitDB_PaymentCascade verifies deleting a member removes its payments.
func TestInitDB_PaymentCascade(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO member (id, first_name, last_name, contact, active, created_at) VALUES ('m1', 'Ana', 'Torres', 'ana@test.com', 1, '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert member: %v", err)
	}
	_, err = db.Exec(`INSERT INTO payment (id, member_id, period, amount_cents, method, paid_at, expires_at, created_at) VALUES ('p1', 'm1', '2026-01', 2500, 'cash', '2026-01-05T00:00:00Z', '2026-02-04T00:00:00Z', '2026-01-05T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert payment: %v", err)
	}

	if _, err := db.Exec("DELETE FROM member WHERE id = 'm1'"); err != nil {
		t.Fatalf("delete member failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM payment WHERE member_id = 'm1'").Scan(&count); err != nil {
		t.Fatalf("count payments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected payments cascaded away, got %d rows", count)
	}
}
