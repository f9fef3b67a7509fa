package clock

import "time"

// DateLayout is the calendar-date format used for daily bookkeeping.
const DateLayout = "2006-01-02"

// Clock abstracts time to keep day rollover deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local time zone, so a "day" matches
// what the user sees.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today formats c's current date with DateLayout.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}
