// Package outbox queues external side effects of ledger mutations so a
// background worker can drain them with retry and backoff, instead of
// firing them from the mutation path and hoping.
package outbox

import (
	"errors"
	"time"
)

// Status constants for entry lifecycle.
const (
	StatusPending  = "pending"
	StatusRetrying = "retrying"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// Action type constants.
const (
	// ActionPushState pushes the full snapshot to the remote store.
	ActionPushState = "push_state"
	// ActionNotifyEmail sends the payout notification email.
	ActionNotifyEmail = "notify_email"
)

// DefaultMaxAttempts bounds retries before an entry is parked as failed.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
)

// Entry is one queued side effect. Payload is JSON for replay.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider id of the produced resource (email message id)
	ErrorMessage    string
}

// New builds a pending entry with default retry bounds.
// PRE: id is a fresh unique id
// POST: Entry is pending with zero attempts
func New(id, actionType, payload string, now time.Time) Entry {
	return Entry{
		ID:          id,
		ActionType:  actionType,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry returns true if the entry is still eligible for processing.
// PRE: Status and Attempts fields are set
// POST: True for pending/retrying/failed with attempts below the bound
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

// IsTerminal returns true once the entry will never be processed again.
func (e *Entry) IsTerminal() bool {
	if e.Status == StatusDone {
		return true
	}
	return e.Status == StatusFailed && e.Attempts >= e.MaxAttempts
}

// MarkAttempt records a processing attempt.
// PRE: CanRetry() is true
// POST: Attempts incremented, LastAttemptedAt set, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess completes the entry.
// POST: Status done, error cleared, ExternalID recorded
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records a failed attempt; the entry parks as failed once the
// retry bound is reached.
// POST: ErrorMessage set; Status failed when out of attempts
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// NextRetryDelay returns the exponential backoff before the next attempt:
// 2^attempts * baseDelay, capped at maxDelay.
// PRE: Attempts is set
// POST: Returns a duration in [baseDelay, maxDelay]
func (e *Entry) NextRetryDelay(baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << e.Attempts)
	if delay > maxDelay || delay < baseDelay {
		return maxDelay
	}
	return delay
}
