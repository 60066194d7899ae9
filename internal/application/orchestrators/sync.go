package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"arisan/internal/adapters/email"
	"arisan/internal/adapters/remote"
	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
)

// PullDeps holds dependencies for ExecutePull.
type PullDeps struct {
	State     *state.Container
	Remote    remote.Client
	Snapshots SnapshotStore
	Now       func() time.Time
}

// ExecutePull fetches the remote document and merges it over local state.
// PRE: deps are populated
// POST: Container and snapshot reflect the remote document; local-only
// settings (credential, dark mode, session) survive
func ExecutePull(ctx context.Context, deps PullDeps) (ledger.State, error) {
	d, err := deps.Remote.Pull(ctx)
	if err != nil {
		return ledger.State{}, fmt.Errorf("pull remote: %w", err)
	}

	now := deps.Now()
	var merged ledger.State
	merged, _ = deps.State.Update(func(st ledger.State) (ledger.State, error) {
		return st.Merge(d, now), nil
	})

	if err := deps.Snapshots.Save(ctx, merged, now); err != nil {
		return ledger.State{}, fmt.Errorf("save snapshot: %w", err)
	}

	slog.Info("remote_pulled", "members", len(merged.Members), "current_week", merged.CurrentWeek)
	return merged, nil
}

// ImportDataInput carries a full or partial document to install.
type ImportDataInput struct {
	Data ledger.Data
}

// ExecuteImportData merges an uploaded document into the state, the
// same way a remote pull would.
// PRE: Data decoded from a trusted admin request
// POST: State merged, persisted and queued for push
func ExecuteImportData(ctx context.Context, input ImportDataInput, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "data_imported", func(st ledger.State) (ledger.State, error) {
		return st.Merge(input.Data, deps.Now()), nil
	})
}

// StartPullWorker starts a goroutine that pulls the remote document on
// an interval.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartPullWorker(deps PullDeps, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if _, err := ExecutePull(ctx, deps); err != nil {
					slog.Error("pull_worker_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("pull_worker_stopped")
				return
			}
		}
	}()
}

// --- Push Executor ---

// PushExecutor pushes the latest state to the remote document store.
// The queued payload is only an audit record; pushing always serializes
// the live state, so stacked queue entries collapse into the newest
// snapshot.
type PushExecutor struct {
	State  *state.Container
	Remote remote.Client
	Now    func() time.Time
}

// Execute pushes the current state.
// PRE: payload is a pushPayload audit record
// POST: Remote document replaced with the live snapshot
func (e *PushExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p pushPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := e.Remote.Push(ctx, e.State.Current().Data(e.Now())); err != nil {
		return "", err
	}
	return p.Event, nil
}

// --- Notify Email Executor ---

// NotifyEmailExecutor delivers queued payout notifications.
type NotifyEmailExecutor struct {
	Sender  email.Sender
	ReplyTo string
}

// Execute sends the notification from the payload.
// PRE: payload is valid JSON matching email.Notification
// POST: Email sent via configured sender, returns message ID
// INVARIANT: outbox entry status managed by caller
func (e *NotifyEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var n email.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := n.Validate(); err != nil {
		return "", err
	}

	req, err := n.Compose()
	if err != nil {
		return "", err
	}
	req.ReplyTo = e.ReplyTo

	result, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}
