// Package schedule decides whether a scheduled slot is still mutable.
//
// Dates and times are carried as canonical zero-padded strings ("2006-01-02",
// "15:04") so that lexicographic order equals chronological order. The
// constructors are the only way values enter the package; anything read from
// storage or a request must pass through ParseDate/ParseClockTime first.
package schedule

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Date is a calendar day in canonical YYYY-MM-DD form.
type Date string

// ClockTime is a time of day in canonical zero-padded HH:MM form.
// The empty string means "no time set".
type ClockTime string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate validates s as a canonical calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	// time.Parse accepts e.g. "2024-1-2"; require the canonical form back.
	if t.Format(dateLayout) != s {
		return "", fmt.Errorf("date %q is not in canonical YYYY-MM-DD form", s)
	}
	return Date(s), nil
}

// ClockTimeOf returns the wall-clock time of t as HH:MM.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Format(timeLayout))
}

// ParseClockTime validates s as a canonical HH:MM time of day. Seconds
// precision from the store ("09:00:00") is truncated. Empty input stays empty.
func ParseClockTime(s string) (ClockTime, error) {
	if s == "" {
		return "", nil
	}
	if len(s) > len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", s, err)
	}
	if t.Format(timeLayout) != s {
		return "", fmt.Errorf("time %q is not in canonical HH:MM form", s)
	}
	return ClockTime(s), nil
}

// IsZero reports whether no time of day is set.
func (c ClockTime) IsZero() bool { return c == "" }

// IsLocked reports whether a slot scheduled at (date, start) is read-only as
// of (refDate, refTime). The rules, in order:
//
//  1. A past day is always locked, regardless of time.
//  2. A future day is never locked.
//  3. On the reference day, the slot is locked iff a start time is set and
//     start <= refTime. Equality locks: a task starting "now" is already
//     underway. An absent start time never locks a same-day slot.
func IsLocked(date Date, start ClockTime, refDate Date, refTime ClockTime) bool {
	if date < refDate {
		return true
	}
	if date > refDate {
		return false
	}
	if start.IsZero() {
		return false
	}
	return start <= refTime
}

// Clock supplies the reference "now". The lock state of a same-day slot flips
// as real time advances, so callers must read the clock fresh for every
// evaluation and never hold a reading across a blocking call.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// LockedNow is IsLocked with the reference taken from clock at call time.
func LockedNow(clock Clock, date Date, start ClockTime) bool {
	now := clock.Now()
	return IsLocked(date, start, DateOf(now), ClockTimeOf(now))
}
