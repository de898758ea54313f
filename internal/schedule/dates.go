// Package schedule holds the pure date logic behind trip booking: day
// normalisation, trip status derivation, availability checks and the
// effective status of a vehicle or driver.
//
// Trip dates are calendar dates anchored at UTC midnight. "Today" is taken
// from the business time zone and re-anchored the same way (see Today), so
// every comparison in this package happens in one frame.
package schedule

import "time"

// DayStart returns 00:00:00 of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last representable instant of t's calendar day in t's
// location.
func DayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_999_999, t.Location())
}

// Today returns the calendar date of now as seen in loc, anchored at UTC
// midnight.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC-anchored calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clock supplies the current business day.
type Clock interface {
	Today() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewClock returns a Clock reading the system time in the business time zone.
func NewClock(loc *time.Location) Clock {
	return systemClock{loc: loc}
}

func (c systemClock) Today() time.Time {
	return Today(time.Now(), c.loc)
}

// FixedClock is a Clock that always reports the same day.
type FixedClock time.Time

// Today implements Clock.
func (c FixedClock) Today() time.Time {
	return DayStart(time.Time(c))
}
