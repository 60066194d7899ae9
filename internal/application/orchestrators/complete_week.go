package orchestrators

import (
	"context"
	"errors"

	"arisan/internal/domain/ledger"
)

// ErrInvalidWeek is returned for non-positive week numbers.
var ErrInvalidWeek = errors.New("week must be at least 1")

// CompleteWeekInput carries input for the complete-week orchestrator.
type CompleteWeekInput struct {
	Week int
}

// ExecuteCompleteWeek marks a week as settled.
// PRE: Week >= 1
// POST: Week is in the completed set; completing the current week
// advances the week pointer unless it is pinned
func ExecuteCompleteWeek(ctx context.Context, input CompleteWeekInput, deps MutationDeps) (ledger.State, error) {
	if input.Week < 1 {
		return ledger.State{}, ErrInvalidWeek
	}
	return applyMutation(ctx, deps, "week_completed", func(st ledger.State) (ledger.State, error) {
		return st.CompleteWeek(input.Week), nil
	})
}

// UncompleteWeekInput carries input for the uncomplete-week orchestrator.
type UncompleteWeekInput struct {
	Week int
}

// ExecuteUncompleteWeek reopens a settled week.
// PRE: Week >= 1
// POST: Week is no longer in the completed set
func ExecuteUncompleteWeek(ctx context.Context, input UncompleteWeekInput, deps MutationDeps) (ledger.State, error) {
	if input.Week < 1 {
		return ledger.State{}, ErrInvalidWeek
	}
	return applyMutation(ctx, deps, "week_reopened", func(st ledger.State) (ledger.State, error) {
		return st.UncompleteWeek(input.Week), nil
	})
}

// SetCurrentWeekInput carries input for the set-current-week orchestrator.
type SetCurrentWeekInput struct {
	Week int
}

// ExecuteSetCurrentWeek pins the week pointer to an explicit value.
// PRE: Week >= 1
// POST: CurrentWeek equals Week and stays there until the pin is cleared
func ExecuteSetCurrentWeek(ctx context.Context, input SetCurrentWeekInput, deps MutationDeps) (ledger.State, error) {
	if input.Week < 1 {
		return ledger.State{}, ErrInvalidWeek
	}
	return applyMutation(ctx, deps, "week_pinned", func(st ledger.State) (ledger.State, error) {
		return st.SetCurrentWeek(input.Week), nil
	})
}

// ExecuteClearWeekPin releases a pinned week pointer.
// PRE: none
// POST: CurrentWeek follows the schedule clock again
func ExecuteClearWeekPin(ctx context.Context, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "week_pin_cleared", func(st ledger.State) (ledger.State, error) {
		return st.ClearWeekPin(deps.Now()), nil
	})
}
