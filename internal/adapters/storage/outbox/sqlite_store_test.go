package outbox

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"arisan/internal/adapters/storage"
	domain "arisan/internal/domain/outbox"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSaveAndGetByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := domain.New("e1", domain.ActionPushState, `{"members":[]}`, testNow)
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ActionType != domain.ActionPushState {
		t.Errorf("action = %q, want %q", got.ActionType, domain.ActionPushState)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, testNow)
	}
}

func TestSaveUpsertsStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := domain.New("e1", domain.ActionNotifyEmail, `{"to":"a@b.c"}`, testNow)
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	e.MarkAttempt(testNow.Add(time.Minute))
	e.MarkSuccess("provider-id-1")
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	got, err := store.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.ExternalID != "provider-id-1" {
		t.Errorf("external id = %q", got.ExternalID)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", got.Attempts)
	}
}

func TestListPendingOrderAndFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := domain.New("e1", domain.ActionPushState, `{}`, testNow)
	second := domain.New("e2", domain.ActionPushState, `{}`, testNow.Add(time.Second))
	done := domain.New("e3", domain.ActionPushState, `{}`, testNow.Add(2*time.Second))
	done.MarkSuccess("")

	for _, e := range []domain.Entry{second, done, first} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != "e1" || pending[1].ID != "e2" {
		t.Errorf("order = %s, %s; want e1, e2", pending[0].ID, pending[1].ID)
	}
}

func TestListFailedAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := domain.New("e1", domain.ActionNotifyEmail, `{}`, testNow)
	e.MaxAttempts = 1
	e.MarkAttempt(testNow.Add(time.Minute))
	e.MarkFailed(errors.New("smtp timeout"))
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}

	failed, err := store.ListFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "smtp timeout" {
		t.Errorf("failed = %+v", failed)
	}

	n, err := store.CountByStatus(ctx, domain.StatusFailed)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	if err := store.Delete(ctx, "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, "e1"); err == nil {
		t.Error("entry still readable after Delete")
	}
}
