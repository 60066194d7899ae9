// Package orchestrators wires domain operations to their side effects:
// state transition, local snapshot, outbox enqueue. One Execute function
// per operation, dependencies injected through a Deps struct.
package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
	domainOutbox "arisan/internal/domain/outbox"
)

// SnapshotStore is the slice of the snapshot store mutations need.
type SnapshotStore interface {
	Save(ctx context.Context, st ledger.State, now time.Time) error
}

// OutboxStore is the slice of the outbox store mutations need.
type OutboxStore interface {
	Save(ctx context.Context, e domainOutbox.Entry) error
}

// MutationDeps holds the dependencies shared by every mutating orchestrator.
type MutationDeps struct {
	State      *state.Container
	Snapshots  SnapshotStore
	Outbox     OutboxStore
	GenerateID func() string
	Now        func() time.Time
}

// pushPayload is the audit payload of a queued push; the executor always
// pushes the latest state, so the payload only records what triggered it.
type pushPayload struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// applyMutation runs fn atomically, persists the result and queues a
// remote push.
// PRE: deps are fully populated
// POST: On success the container, snapshot and outbox all reflect the
// transition; on a domain error nothing changed
func applyMutation(ctx context.Context, deps MutationDeps, event string, fn func(ledger.State) (ledger.State, error)) (ledger.State, error) {
	next, err := deps.State.Update(fn)
	if err != nil {
		return ledger.State{}, err
	}

	now := deps.Now()
	if err := deps.Snapshots.Save(ctx, next, now); err != nil {
		return ledger.State{}, fmt.Errorf("save snapshot: %w", err)
	}

	enqueuePush(ctx, deps, event, now)

	slog.Info("ledger_event", "event", event)
	return next, nil
}

// enqueuePush queues a push_state entry. A failed enqueue is logged but
// does not fail the mutation; the periodic pull keeps remotes converging.
func enqueuePush(ctx context.Context, deps MutationDeps, event string, now time.Time) {
	payload, err := json.Marshal(pushPayload{Event: event, At: now})
	if err != nil {
		slog.Error("push_enqueue_failed", "event", event, "error", err.Error())
		return
	}
	entry := domainOutbox.New(deps.GenerateID(), domainOutbox.ActionPushState, string(payload), now)
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		slog.Error("push_enqueue_failed", "event", event, "error", err.Error())
	}
}
