// Package schedule holds the weekly savings schedule and the calendar
// arithmetic that maps week numbers to dates.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Default schedule values used when nothing has been configured.
const (
	DefaultDayOfWeek = 1 // Monday
	DefaultTime      = "09:00"
)

// Domain errors
var (
	ErrInvalidDay  = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTime = errors.New("time must be in HH:mm format")
)

// SavingsSchedule describes the recurring weekly collection slot.
// StartDate is the instant week 1 begins; it may be zero for a schedule
// that has never been saved, in which case StartOrNext resolves it.
// INVARIANT: after Snap, StartDate's weekday and clock time match
// DayOfWeek and Time.
type SavingsSchedule struct {
	DayOfWeek int       `json:"dayOfWeek" yaml:"dayOfWeek"` // 0 = Sunday ... 6 = Saturday
	Time      string    `json:"time" yaml:"time"`           // HH:mm
	StartDate time.Time `json:"startDate,omitzero" yaml:"startDate,omitempty"`
}

// Default returns the out-of-the-box schedule (Monday 09:00, no start date).
func Default() SavingsSchedule {
	return SavingsSchedule{DayOfWeek: DefaultDayOfWeek, Time: DefaultTime}
}

// Validate checks if the SavingsSchedule has valid data.
// PRE: SavingsSchedule struct is populated
// POST: Returns nil if valid, error otherwise
func (s SavingsSchedule) Validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return ErrInvalidDay
	}
	if _, _, err := ParseClock(s.Time); err != nil {
		return ErrInvalidTime
	}
	return nil
}

// ParseClock splits an HH:mm string into hour and minute.
// PRE: none
// POST: Returns hour 0-23 and minute 0-59, or an error
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextOccurrence returns the next instant at or after from that falls on
// the given weekday at the given clock time.
// PRE: dayOfWeek is 0-6, clock parses as HH:mm
// POST: The result is strictly after from when from itself is the target
// moment or later in the day; an unparseable clock is treated as 00:00
func NextOccurrence(dayOfWeek int, clock string, from time.Time) time.Time {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		hour, minute = 0, 0
	}
	candidate := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	diff := (dayOfWeek - int(from.Weekday()) + 7) % 7
	if diff == 0 {
		if !candidate.After(from) {
			candidate = candidate.AddDate(0, 0, 7)
		}
	} else {
		candidate = candidate.AddDate(0, 0, diff)
	}
	return candidate
}

// StartOrNext returns the schedule's start date, falling back to the next
// occurrence of the slot when no start date has been recorded.
// PRE: now is a valid time
// POST: Returns a non-zero time
func (s SavingsSchedule) StartOrNext(now time.Time) time.Time {
	if !s.StartDate.IsZero() {
		return s.StartDate
	}
	return NextOccurrence(s.DayOfWeek, s.Time, now)
}

// WeekDate returns the calendar date of the given week number.
// PRE: weekNumber >= 1
// POST: Returns start + (weekNumber-1)*7 days; deterministic for a fixed
// start date
func (s SavingsSchedule) WeekDate(weekNumber int, now time.Time) time.Time {
	return s.StartOrNext(now).AddDate(0, 0, (weekNumber-1)*7)
}

// CurrentWeek computes the week number from wall-clock time.
// PRE: now is a valid time
// POST: Returns 1 before the start date, floor(elapsed/7d)+1 after
func (s SavingsSchedule) CurrentWeek(now time.Time) int {
	start := s.StartOrNext(now)
	if now.Before(start) {
		return 1
	}
	weeks := int(now.Sub(start) / (7 * 24 * time.Hour))
	return weeks + 1
}

// Snap changes the slot's weekday and time, moving the existing start
// date forward to the nearest matching occurrence so the relative week
// alignment is preserved.
// PRE: dayOfWeek is 0-6, clock parses as HH:mm
// POST: Returned schedule has the new slot and a StartDate whose weekday
// and clock time match it
func (s SavingsSchedule) Snap(dayOfWeek int, clock string, now time.Time) SavingsSchedule {
	out := s
	out.DayOfWeek = dayOfWeek
	out.Time = clock

	if s.StartDate.IsZero() {
		out.StartDate = NextOccurrence(dayOfWeek, clock, now)
		return out
	}

	hour, minute, err := ParseClock(clock)
	if err != nil {
		hour, minute = 0, 0
	}
	d := s.StartDate
	snapped := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
	diff := (dayOfWeek - int(snapped.Weekday()) + 7) % 7
	out.StartDate = snapped.AddDate(0, 0, diff)
	return out
}

// CombineDateAndTime builds a start instant from a YYYY-MM-DD date string
// and an HH:mm clock, in the given location.
// PRE: date is YYYY-MM-DD, clock is HH:mm
// POST: Returns the combined instant or an error
func CombineDateAndTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
