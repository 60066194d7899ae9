package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"

	"arisan/internal/adapters/email"
	"arisan/internal/domain/ledger"
	domainOutbox "arisan/internal/domain/outbox"
)

// MarkSavedInput carries input for the mark-saved orchestrator.
type MarkSavedInput struct {
	MemberID string
	Week     int
}

// ExecuteMarkSaved records one unit contribution for a member and week.
// PRE: MemberID resolves, Week >= 1
// POST: A saving transaction exists for (member, week); marking twice is
// a silent no-op
func ExecuteMarkSaved(ctx context.Context, input MarkSavedInput, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "saving_marked", func(st ledger.State) (ledger.State, error) {
		return st.MarkSaved(input.MemberID, input.Week, deps.GenerateID(), deps.Now())
	})
}

// UnmarkSavedInput carries input for the unmark-saved orchestrator.
type UnmarkSavedInput struct {
	MemberID string
	Week     int
}

// ExecuteUnmarkSaved removes a member's saving for a week.
// PRE: MemberID is non-empty
// POST: No saving transaction remains for (member, week)
func ExecuteUnmarkSaved(ctx context.Context, input UnmarkSavedInput, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "saving_unmarked", func(st ledger.State) (ledger.State, error) {
		return st.UnmarkSaved(input.MemberID, input.Week), nil
	})
}

// MarkReceivedInput carries input for the mark-received orchestrator.
type MarkReceivedInput struct {
	MemberID string
	Week     int
}

// MarkReceivedResult carries the outcome of a payout.
type MarkReceivedResult struct {
	State  ledger.State
	Payout decimal.Decimal
}

// ExecuteMarkReceived pays out the pool to a member for a week.
// PRE: Every active member has saved for the week; the member has not
// received this week before
// POST: A receiving transaction exists; when the member has an email
// address a notification is queued
func ExecuteMarkReceived(ctx context.Context, input MarkReceivedInput, deps MutationDeps) (MarkReceivedResult, error) {
	var payout decimal.Decimal
	next, err := applyMutation(ctx, deps, "payout_marked", func(st ledger.State) (ledger.State, error) {
		var err error
		st, payout, err = st.MarkReceived(input.MemberID, input.Week, deps.GenerateID(), deps.Now())
		return st, err
	})
	if err != nil {
		return MarkReceivedResult{}, err
	}

	enqueueNotification(ctx, deps, next, input.MemberID, input.Week, payout)
	return MarkReceivedResult{State: next, Payout: payout}, nil
}

// enqueueNotification queues the payout email when the member has an
// address. Failures are logged; the payout itself already happened.
func enqueueNotification(ctx context.Context, deps MutationDeps, st ledger.State, memberID string, week int, payout decimal.Decimal) {
	for _, m := range st.Members {
		if m.ID != memberID {
			continue
		}
		if m.Email == "" {
			slog.Debug("payout_notification_skipped", "member_id", memberID, "reason", "no email")
			return
		}
		payload, err := json.Marshal(email.Notification{
			To:         m.Email,
			MemberName: m.Name,
			Week:       week,
			Amount:     payout,
		})
		if err != nil {
			slog.Error("notification_enqueue_failed", "member_id", memberID, "error", err.Error())
			return
		}
		entry := domainOutbox.New(deps.GenerateID(), domainOutbox.ActionNotifyEmail, string(payload), deps.Now())
		if err := deps.Outbox.Save(ctx, entry); err != nil {
			slog.Error("notification_enqueue_failed", "member_id", memberID, "error", err.Error())
		}
		return
	}
}

// UnmarkReceivedInput carries input for the unmark-received orchestrator.
type UnmarkReceivedInput struct {
	MemberID string
	Week     int
}

// ExecuteUnmarkReceived reverses a payout for a member and week.
// PRE: MemberID is non-empty
// POST: No receiving transaction remains for (member, week); the week is
// removed from the member's received list
func ExecuteUnmarkReceived(ctx context.Context, input UnmarkReceivedInput, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "payout_unmarked", func(st ledger.State) (ledger.State, error) {
		return st.UnmarkReceived(input.MemberID, input.Week), nil
	})
}
