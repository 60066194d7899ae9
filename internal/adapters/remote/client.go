// Package remote syncs the group snapshot with a hosted JSON document
// store. The document is shared by every deployment of the same group,
// so the last writer wins.
package remote

import (
	"context"
	"errors"

	"arisan/internal/domain/ledger"
)

// Domain errors.
var (
	ErrNotConfigured = errors.New("remote store is not configured")
	ErrRemote        = errors.New("remote store request failed")
)

// Client pulls and pushes the sync subset of the group state.
type Client interface {
	// Pull fetches the latest remote document.
	// PRE: none
	// POST: Returns the remote data, or defaults when the remote has no
	// document yet
	Pull(ctx context.Context) (ledger.Data, error)

	// Push uploads the full document, creating it when absent.
	// PRE: d is a complete sync payload
	// POST: Remote document replaced (or created)
	Push(ctx context.Context, d ledger.Data) error
}

// NoopClient satisfies Client for deployments without remote credentials.
// Pull hands back defaults and Push succeeds silently, so the rest of
// the system never has to special-case an unconfigured remote.
type NoopClient struct{}

// Pull returns the default document.
func (NoopClient) Pull(ctx context.Context) (ledger.Data, error) {
	return ledger.DefaultData(), nil
}

// Push does nothing.
func (NoopClient) Push(ctx context.Context, d ledger.Data) error {
	return nil
}
