// Package clock provides an injectable time source. Scheduling works on UTC
// calendar days: a due date is the UTC midnight of the day it falls on.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Used in tests.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }

// Day truncates t to the UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day according to c.
func Today(c Clock) time.Time {
	return Day(c.Now())
}

// DateLayout is the storage and wire format for calendar days.
const DateLayout = "2006-01-02"

// ParseDay parses a DateLayout string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
