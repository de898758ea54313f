package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
)

// VehicleOption is a vehicle annotated with whether it can take a booking.
type VehicleOption struct {
	Vehicle   domain.Vehicle
	Available bool
}

// DriverOption is a driver annotated with whether they can take a booking.
type DriverOption struct {
	Driver    domain.Driver
	Available bool
}

// Availability is the booking form's view of the fleet for a date range.
type Availability struct {
	Vehicles []VehicleOption
	Drivers  []DriverOption
}

// AvailabilityService answers "who is free for these dates" queries.
type AvailabilityService struct {
	trips    repo.TripRepo
	vehicles repo.VehicleRepo
	drivers  repo.DriverRepo
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(trips repo.TripRepo, vehicles repo.VehicleRepo, drivers repo.DriverRepo) *AvailabilityService {
	return &AvailabilityService{trips: trips, vehicles: vehicles, drivers: drivers}
}

// Check annotates every vehicle and driver with its availability for
// [start, end]. excludeTripID, when non-nil, is ignored so an edited trip
// does not conflict with itself. Zero dates mark everything available.
func (s *AvailabilityService) Check(ctx context.Context, start, end time.Time, excludeTripID uuid.UUID) (Availability, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return Availability{}, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}

	trips, err := s.trips.List(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("service.AvailabilityService.Check: %w", err)
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("service.AvailabilityService.Check: %w", err)
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("service.AvailabilityService.Check: %w", err)
	}

	out := Availability{
		Vehicles: make([]VehicleOption, 0, len(vehicles)),
		Drivers:  make([]DriverOption, 0, len(drivers)),
	}
	for _, v := range vehicles {
		ok := schedule.IsAvailable(domain.VehicleRef(v.ID), start, end, trips, excludeTripID)
		out.Vehicles = append(out.Vehicles, VehicleOption{Vehicle: v, Available: ok})
	}
	for _, d := range drivers {
		ok := schedule.IsAvailable(domain.DriverRef(d.ID), start, end, trips, excludeTripID)
		out.Drivers = append(out.Drivers, DriverOption{Driver: d, Available: ok})
	}
	return out, nil
}
