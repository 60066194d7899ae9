package storage

import (
	"context"
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

func TestInitDB(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	want := []string{"outbox", "snapshot"}
	got := getTableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("tables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitDBIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

func TestTimedDBSatisfiesSQLDB(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	timed := NewTimedDB(db)
	var sqldb SQLDB = timed

	ctx := context.Background()
	if _, err := sqldb.ExecContext(ctx,
		"INSERT INTO snapshot (key, body, version, updated_at) VALUES (?, ?, ?, ?)",
		"test", "{}", 1, "2026-03-02T09:00:00Z"); err != nil {
		t.Fatalf("ExecContext failed: %v", err)
	}

	var body string
	if err := sqldb.QueryRowContext(ctx, "SELECT body FROM snapshot WHERE key = ?", "test").Scan(&body); err != nil {
		t.Fatalf("QueryRowContext failed: %v", err)
	}
	if body != "{}" {
		t.Errorf("body = %q, want {}", body)
	}

	if timed.RawDB() != db {
		t.Error("RawDB did not return the wrapped connection")
	}
}
