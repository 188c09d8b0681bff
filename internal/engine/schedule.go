package engine

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the recurrence of a chore's due date.
type Interval string

const (
	IntervalNone    Interval = "none"
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

func (i Interval) IsValid() bool {
	switch i {
	case IntervalNone, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	default:
		return false
	}
}

func ParseInterval(input string) (Interval, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return IntervalNone, nil
	}
	i := Interval(s)
	if !i.IsValid() {
		return "", fmt.Errorf("invalid interval: %q", input)
	}
	return i, nil
}

// NextDueDate advances due by the interval until it lands strictly after
// `after`. A one-shot chore (IntervalNone) has no next occurrence.
func NextDueDate(due time.Time, interval Interval, after time.Time) (time.Time, bool) {
	if interval == IntervalNone || due.IsZero() {
		return time.Time{}, false
	}
	next := due
	// Guard against a pathological far-past due date.
	for i := 0; i < 10_000 && !next.After(after); i++ {
		switch interval {
		case IntervalDaily:
			next = next.AddDate(0, 0, 1)
		case IntervalWeekly:
			next = next.AddDate(0, 0, 7)
		case IntervalMonthly:
			next = next.AddDate(0, 1, 0)
		}
	}
	if !next.After(after) {
		return time.Time{}, false
	}
	return next, true
}

// NextMidnight returns the first midnight after now in the given location.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, 1)
}

// StartOfDay returns midnight of now's day in the given location.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
