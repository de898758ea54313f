// Package domain contains the core data types for the Travel Desk backend.
// This package depends only on uuid and is imported by every other
// internal package (schedule, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripUpcoming  TripStatus = "Upcoming"
	TripRunning   TripStatus = "Running"
	TripCompleted TripStatus = "Completed"
	TripCancelled TripStatus = "Cancelled"
)

// Valid reports whether s is one of the known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripUpcoming, TripRunning, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a driver may move a trip from s to next.
// Only Upcoming → Running → Completed is allowed; Cancelled is an admin edit,
// not a transition.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	switch s {
	case TripUpcoming:
		return next == TripRunning
	case TripRunning:
		return next == TripCompleted
	}
	return false
}

// Trip is a booking of one vehicle and one driver over a range of calendar days.
//
// StartDate and EndDate are calendar dates anchored at UTC midnight; both days
// are part of the trip. RemainingPayment is derived from RentAmount and
// AdvancePayment on every save and must not be set independently.
type Trip struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	VehicleID       uuid.UUID
	DriverID        uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	FromLocation    string
	ToLocation      string
	PassengersCount int
	RentAmount      float64
	AdvancePayment  float64
	// RemainingPayment is RentAmount - AdvancePayment.
	RemainingPayment float64
	Status           TripStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Route returns the "From to To" display label. It is regenerated from the
// structured locations every time and never parsed back.
func (t Trip) Route() string {
	switch {
	case t.FromLocation == "" && t.ToLocation == "":
		return ""
	case t.ToLocation == "":
		return t.FromLocation
	case t.FromLocation == "":
		return t.ToLocation
	}
	return t.FromLocation + " to " + t.ToLocation
}

// Uses reports whether the trip is assigned to the given resource.
func (t Trip) Uses(ref ResourceRef) bool {
	switch ref.Type {
	case ResourceVehicle:
		return t.VehicleID == ref.ID
	case ResourceDriver:
		return t.DriverID == ref.ID
	}
	return false
}

// TripFilter narrows a trip listing. Zero values mean "no filter".
type TripFilter struct {
	Status   TripStatus
	DriverID uuid.UUID
}

// Match reports whether t passes the filter.
func (f TripFilter) Match(t Trip) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.DriverID != uuid.Nil && t.DriverID != f.DriverID {
		return false
	}
	return true
}
