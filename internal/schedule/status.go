package schedule

import (
	"time"

	"github.com/pkordes/travel-desk/internal/domain"
)

// DeriveStatus computes a trip's lifecycle status from its dates.
// A zero start or end means the dates are not known yet and yields Upcoming.
// Cancelled is never derived; it is only ever set by an admin.
func DeriveStatus(start, end, today time.Time) domain.TripStatus {
	if start.IsZero() || end.IsZero() {
		return domain.TripUpcoming
	}
	s, e, now := DayStart(start), DayEnd(end), DayStart(today)
	switch {
	case now.After(e):
		return domain.TripCompleted
	case !now.Before(s):
		return domain.TripRunning
	}
	return domain.TripUpcoming
}

// Covers reports whether today falls within the trip's day-inclusive range.
func Covers(t domain.Trip, today time.Time) bool {
	now := DayStart(today)
	return !now.Before(DayStart(t.StartDate)) && !now.After(DayEnd(t.EndDate))
}

// EffectiveStatus is what a resource's status should be today given the trip
// set: On Trip iff a non-cancelled trip assigned to it covers today.
func EffectiveStatus(ref domain.ResourceRef, trips []domain.Trip, today time.Time) domain.ResourceStatus {
	if _, ok := ActiveTrip(ref, trips, today); ok {
		return domain.StatusOnTrip
	}
	return domain.StatusAvailable
}

// ActiveTrip returns the first non-cancelled trip for ref covering today.
func ActiveTrip(ref domain.ResourceRef, trips []domain.Trip, today time.Time) (domain.Trip, bool) {
	for _, t := range trips {
		if t.Status == domain.TripCancelled || !t.Uses(ref) {
			continue
		}
		if Covers(t, today) {
			return t, true
		}
	}
	return domain.Trip{}, false
}
