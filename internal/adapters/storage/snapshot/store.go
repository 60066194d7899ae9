// Package snapshot persists the full group state as a single JSON
// document keyed by a fixed name. The document mirrors the remote sync
// payload plus local-only settings, with the admin credential kept in
// its obfuscated form and the session flag always written as false.
package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"arisan/internal/domain/ledger"
)

// Key is the single row key under which the state lives.
const Key = "arisan-state"

// Version is the persisted document format version.
const Version = 1

// Store defines the interface for state snapshot persistence.
type Store interface {
	// Load reads the snapshot and rebuilds the state.
	// PRE: none
	// POST: Returns the stored state and true, or defaults and false when
	// no snapshot exists or the stored body cannot be decoded
	Load(ctx context.Context, now time.Time) (ledger.State, bool, error)

	// Save writes the full state snapshot.
	// PRE: st is internally consistent
	// POST: Snapshot row is inserted or replaced
	Save(ctx context.Context, st ledger.State, now time.Time) error
}

// persistedState is the JSON shape of the stored state. It extends the
// sync payload with local-only fields.
type persistedState struct {
	ledger.Data
	AdminPassword string `json:"adminPassword"`
	// Pointer so a legacy document without the field keeps the default
	// (dark mode on) instead of decoding to false.
	DarkMode *bool `json:"darkMode"`
	IsAdmin  bool  `json:"isAdmin"`
}

// envelope wraps the state with a format version.
type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

// encodeState serializes st into the versioned envelope.
// INVARIANT: isAdmin is always persisted as false
func encodeState(st ledger.State, now time.Time) ([]byte, error) {
	env := envelope{
		State: persistedState{
			Data:          st.Data(now),
			AdminPassword: st.AdminPassword,
			DarkMode:      &st.DarkMode,
			IsAdmin:       false,
		},
		Version: Version,
	}
	return json.Marshal(env)
}

// decodeState rebuilds a State from the stored body. Unknown or missing
// fields fall back to defaults.
func decodeState(body []byte, now time.Time) (ledger.State, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ledger.State{}, err
	}

	st := ledger.Default().Merge(env.State.Data, now)
	if env.State.AdminPassword != "" {
		st.AdminPassword = env.State.AdminPassword
	}
	if env.State.DarkMode != nil {
		st.DarkMode = *env.State.DarkMode
	}
	st.IsAdmin = false
	return st, nil
}
