package orchestrators

import (
	"context"
	"errors"
	"time"

	"arisan/internal/domain/ledger"
	"arisan/internal/domain/schedule"
)

// ErrStartDateMismatch rejects an explicit start date that does not fall
// on the scheduled day of week.
var ErrStartDateMismatch = errors.New("start date does not fall on the scheduled day of week")

// SetScheduleInput carries input for the set-schedule orchestrator.
// StartDate, when set, overrides the snapped start ("YYYY-MM-DD",
// combined with Time in the given location).
type SetScheduleInput struct {
	DayOfWeek int
	Time      string
	StartDate string
	Location  *time.Location
}

// ExecuteSetSchedule changes the weekly savings schedule.
// PRE: DayOfWeek in 0..6, Time is "HH:mm"; StartDate, when given, falls
// on DayOfWeek
// POST: Schedule updated with start date snapped forward (or set
// explicitly); unpinned week pointer recomputed against the new clock
func ExecuteSetSchedule(ctx context.Context, input SetScheduleInput, deps MutationDeps) (ledger.State, error) {
	probe := schedule.SavingsSchedule{DayOfWeek: input.DayOfWeek, Time: input.Time}
	if err := probe.Validate(); err != nil {
		return ledger.State{}, err
	}

	var start time.Time
	if input.StartDate != "" {
		loc := input.Location
		if loc == nil {
			loc = time.UTC
		}
		var err error
		start, err = schedule.CombineDateAndTime(input.StartDate, input.Time, loc)
		if err != nil {
			return ledger.State{}, err
		}
		// Week dates are start + n weeks, so a start on the wrong
		// weekday would put every week on the wrong day.
		if int(start.Weekday()) != input.DayOfWeek {
			return ledger.State{}, ErrStartDateMismatch
		}
	}

	return applyMutation(ctx, deps, "schedule_changed", func(st ledger.State) (ledger.State, error) {
		next := st.SetSchedule(input.DayOfWeek, input.Time, deps.Now())
		if !start.IsZero() {
			next.Schedule.StartDate = start
			if !next.ManualWeek {
				next.CurrentWeek = next.Schedule.CurrentWeek(deps.Now())
			}
		}
		return next, nil
	})
}
