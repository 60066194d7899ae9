package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"arisan/internal/adapters/storage"
	"arisan/internal/domain/ledger"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// SQLiteStore implements the snapshot Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new snapshot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the snapshot and rebuilds the state.
// PRE: none
// POST: Returns the stored state and true, or defaults and false when
// no snapshot exists or the stored body cannot be decoded
func (s *SQLiteStore) Load(ctx context.Context, now time.Time) (ledger.State, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM snapshot WHERE key = ?`, Key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Default(), false, nil
	}
	if err != nil {
		return ledger.State{}, false, err
	}

	st, err := decodeState([]byte(body), now)
	if err != nil {
		// A corrupt snapshot must not brick startup. Log and start fresh.
		slog.Warn("snapshot_decode_failed", "error", err)
		return ledger.Default(), false, nil
	}
	return st, true, nil
}

// Save writes the full state snapshot.
// PRE: st is internally consistent
// POST: Snapshot row is inserted or replaced
func (s *SQLiteStore) Save(ctx context.Context, st ledger.State, now time.Time) error {
	body, err := encodeState(st, now)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshot (key, body, version, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   body=excluded.body, version=excluded.version, updated_at=excluded.updated_at`,
		Key, string(body), Version, now.Format(dateLayout))
	return err
}
