package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
)

// IsAvailable reports whether ref is free for every day from start to end
// (both inclusive) given the existing trips.
//
// The trip with id excludeTripID is ignored so that a trip being edited does
// not conflict with itself; pass uuid.Nil to exclude nothing. Cancelled trips
// never conflict. If either candidate date is zero nothing can be checked yet
// and the resource is reported available.
func IsAvailable(ref domain.ResourceRef, start, end time.Time, trips []domain.Trip, excludeTripID uuid.UUID) bool {
	return len(Conflicts(ref, start, end, trips, excludeTripID)) == 0
}

// Conflicts returns the trips that make ref unavailable for the candidate
// range, using the same rules as IsAvailable.
func Conflicts(ref domain.ResourceRef, start, end time.Time, trips []domain.Trip, excludeTripID uuid.UUID) []domain.Trip {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	candStart, candEnd := DayStart(start), DayEnd(end)

	var out []domain.Trip
	for _, t := range trips {
		if excludeTripID != uuid.Nil && t.ID == excludeTripID {
			continue
		}
		if t.Status == domain.TripCancelled || !t.Uses(ref) {
			continue
		}
		// Day-inclusive ranges: touching on a boundary day is an overlap.
		if !DayStart(t.StartDate).After(candEnd) && !DayEnd(t.EndDate).Before(candStart) {
			out = append(out, t)
		}
	}
	return out
}
