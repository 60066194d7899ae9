package projections

import (
	"context"

	outboxStore "arisan/internal/adapters/storage/outbox"
	domain "arisan/internal/domain/outbox"
)

// SyncStatus summarizes the outbox for the admin panel.
type SyncStatus struct {
	Pending  int
	Retrying int
	Failed   int
	// Most recent permanently-failed entries, newest first.
	RecentFailures []domain.Entry
}

// GetSyncStatusDeps holds dependencies for the sync status projection.
type GetSyncStatusDeps struct {
	OutboxStore outboxStore.Store
}

// GetSyncStatus reads queue depths and recent failures.
// PRE: store is connected
// POST: Counts reflect the queue at call time
func GetSyncStatus(ctx context.Context, deps GetSyncStatusDeps) (SyncStatus, error) {
	var status SyncStatus
	var err error

	if status.Pending, err = deps.OutboxStore.CountByStatus(ctx, domain.StatusPending); err != nil {
		return SyncStatus{}, err
	}
	if status.Retrying, err = deps.OutboxStore.CountByStatus(ctx, domain.StatusRetrying); err != nil {
		return SyncStatus{}, err
	}
	if status.Failed, err = deps.OutboxStore.CountByStatus(ctx, domain.StatusFailed); err != nil {
		return SyncStatus{}, err
	}
	if status.Failed > 0 {
		if status.RecentFailures, err = deps.OutboxStore.ListFailed(ctx, 10); err != nil {
			return SyncStatus{}, err
		}
	}
	return status, nil
}
