// Package service contains the business logic for the travel desk API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
)

// ChangeNotifier is told which topics a mutation touched. *ChangeFeed
// satisfies it.
type ChangeNotifier interface {
	Changed(ctx context.Context, topics ...events.Topic)
}

// ResourceSyncer re-synchronizes the resources of one trip.
// *StatusSynchronizer satisfies it.
type ResourceSyncer interface {
	SyncTrip(ctx context.Context, trips []domain.Trip, after domain.Trip, before *domain.Trip) SyncReport
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, ...events.Topic) {}

// TripService implements business logic for Trip operations: validation,
// double-booking prevention, status derivation, the driver lifecycle, and
// re-synchronizing vehicle and driver status after every write.
type TripService struct {
	trips     repo.TripRepo
	customers repo.CustomerRepo
	vehicles  repo.VehicleRepo
	drivers   repo.DriverRepo
	syncer    ResourceSyncer
	notifier  ChangeNotifier
	clock     schedule.Clock
	log       *slog.Logger
}

// TripDeps groups the collaborators of a TripService.
type TripDeps struct {
	Trips     repo.TripRepo
	Customers repo.CustomerRepo
	Vehicles  repo.VehicleRepo
	Drivers   repo.DriverRepo
	Syncer    ResourceSyncer
	Notifier  ChangeNotifier
	Clock     schedule.Clock
	Log       *slog.Logger
}

// NewTripService constructs a TripService. A nil Notifier disables change
// notifications.
func NewTripService(d TripDeps) *TripService {
	s := &TripService{
		trips:     d.Trips,
		customers: d.Customers,
		vehicles:  d.Vehicles,
		drivers:   d.Drivers,
		syncer:    d.Syncer,
		notifier:  d.Notifier,
		clock:     d.Clock,
		log:       d.Log,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	return s
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation for invalid input and domain.ErrConflict when
// the vehicle or driver is already booked for an overlapping date range.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	if err := s.checkResources(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	all, err := s.trips.List(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if err := checkAvailability(trip, all, uuid.Nil); err != nil {
		return domain.Trip{}, err
	}

	customerID, err := s.findOrCreateCustomer(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.CustomerID = customerID
	trip.Status = s.statusOnSave(trip)

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.afterWrite(ctx, created, nil, events.TopicCustomers)
	return created, nil
}

// GetByID returns a single trip. Drivers may only read their own trips.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	if !actor.CanAccessDriver(trip.DriverID) {
		return domain.Trip{}, fmt.Errorf("%w: trip is not assigned to you", domain.ErrForbidden)
	}
	return trip, nil
}

// List returns trips matching filter, newest first. Drivers only ever see
// their own trips regardless of the requested driver filter.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, filter domain.TripFilter, actor domain.Actor) ([]domain.Trip, error) {
	if !actor.IsAdmin() {
		filter.DriverID = actor.DriverID
		if filter.DriverID == uuid.Nil {
			return nil, fmt.Errorf("%w: token carries no driver id", domain.ErrForbidden)
		}
	}
	all, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	out := make([]domain.Trip, 0, len(all))
	for _, t := range all {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update validates and persists an admin edit of an existing trip. The trip
// itself is excluded from the availability check, and both the old and the
// new vehicle and driver are re-synchronized.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	before, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	if err := s.checkResources(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	all, err := s.trips.List(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if err := checkAvailability(trip, all, trip.ID); err != nil {
		return domain.Trip{}, err
	}

	customerID, err := s.findOrCreateCustomer(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	trip.CustomerID = customerID
	trip.Status = s.statusOnSave(trip)

	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	s.afterWrite(ctx, updated, &before, events.TopicCustomers)
	return updated, nil
}

// UpdateStatus applies a lifecycle transition.
//
// Drivers may move their own trips Upcoming to Running and Running to
// Completed. Admins may make the same transitions and may also cancel a trip
// from any state other than Cancelled.
func (s *TripService) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TripStatus, actor domain.Actor) (domain.Trip, error) {
	if !next.Valid() {
		return domain.Trip{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, next)
	}

	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}
	if !actor.CanAccessDriver(trip.DriverID) {
		return domain.Trip{}, fmt.Errorf("%w: trip is not assigned to you", domain.ErrForbidden)
	}

	allowed := trip.Status.CanTransitionTo(next) ||
		(actor.IsAdmin() && next == domain.TripCancelled && trip.Status != domain.TripCancelled)
	if !allowed {
		return domain.Trip{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, trip.Status, next)
	}

	updated, err := s.trips.UpdateStatus(ctx, id, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}

	s.afterWrite(ctx, updated, nil)
	return updated, nil
}

// Delete removes a trip and frees its vehicle and driver if nothing else
// holds them today.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.afterWrite(ctx, trip, nil)
	return nil
}

// afterWrite re-reads the trip list, re-synchronizes the trip's resources
// against it and notifies subscribers. The trip row is already committed, so
// failures are only logged.
func (s *TripService) afterWrite(ctx context.Context, after domain.Trip, before *domain.Trip, extra ...events.Topic) {
	all, err := s.trips.List(ctx)
	if err != nil {
		s.log.Error("trip saved but snapshot reload failed", "trip_id", after.ID.String(), "error", err)
		return
	}
	report := s.syncer.SyncTrip(ctx, all, after, before)
	if len(report.Failed) > 0 {
		s.log.Warn("trip saved with stale resource status",
			"trip_id", after.ID.String(),
			"failed", len(report.Failed),
		)
	}
	topics := append([]events.Topic{events.TopicTrips, events.TopicVehicles, events.TopicDrivers}, extra...)
	s.notifier.Changed(ctx, topics...)
}

// statusOnSave keeps an explicit cancellation and otherwise derives the
// status from the dates.
func (s *TripService) statusOnSave(trip domain.Trip) domain.TripStatus {
	if trip.Status == domain.TripCancelled {
		return domain.TripCancelled
	}
	return schedule.DeriveStatus(trip.StartDate, trip.EndDate, s.clock.Today())
}

// checkResources verifies that the assigned vehicle and driver exist.
func (s *TripService) checkResources(ctx context.Context, trip domain.Trip) error {
	if _, err := s.vehicles.GetByID(ctx, trip.VehicleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: vehicle %s does not exist", domain.ErrValidation, trip.VehicleID)
		}
		return err
	}
	if _, err := s.drivers.GetByID(ctx, trip.DriverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: driver %s does not exist", domain.ErrValidation, trip.DriverID)
		}
		return err
	}
	return nil
}

// findOrCreateCustomer returns the ID of the customer with the trip's phone
// number, creating the customer on first booking.
func (s *TripService) findOrCreateCustomer(ctx context.Context, trip domain.Trip) (uuid.UUID, error) {
	existing, err := s.customers.GetByPhone(ctx, trip.CustomerPhone)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, err
	}

	created, err := s.customers.Create(ctx, domain.Customer{
		Name:    trip.CustomerName,
		Phone:   trip.CustomerPhone,
		Address: trip.CustomerAddress,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Another request created the same customer first.
		existing, err = s.customers.GetByPhone(ctx, trip.CustomerPhone)
		return existing.ID, err
	}
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// checkAvailability rejects trip if its vehicle or driver has an overlapping
// non-cancelled trip. A cancelled trip never blocks anything.
func checkAvailability(trip domain.Trip, all []domain.Trip, excludeID uuid.UUID) error {
	if trip.Status == domain.TripCancelled {
		return nil
	}
	for _, ref := range []domain.ResourceRef{domain.VehicleRef(trip.VehicleID), domain.DriverRef(trip.DriverID)} {
		clash := schedule.Conflicts(ref, trip.StartDate, trip.EndDate, all, excludeID)
		if len(clash) == 0 {
			continue
		}
		c := clash[0]
		return fmt.Errorf("%w: %s is already booked from %s to %s",
			domain.ErrConflict, ref.Type, c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout))
	}
	return nil
}

const dateLayout = "2006-01-02"

// normalizeTrip trims text fields, anchors dates to calendar days, and
// derives the remaining payment.
func normalizeTrip(t domain.Trip) domain.Trip {
	t.CustomerName = strings.TrimSpace(t.CustomerName)
	t.CustomerPhone = digitsOnly(t.CustomerPhone)
	t.CustomerAddress = strings.TrimSpace(t.CustomerAddress)
	t.FromLocation = strings.TrimSpace(t.FromLocation)
	t.ToLocation = strings.TrimSpace(t.ToLocation)
	if !t.StartDate.IsZero() {
		t.StartDate = schedule.DayStart(t.StartDate)
	}
	if !t.EndDate.IsZero() {
		t.EndDate = schedule.DayStart(t.EndDate)
	}
	t.RemainingPayment = roundCents(t.RentAmount - t.AdvancePayment)
	return t
}

// validateTrip enforces the business rules common to Create and Update.
func validateTrip(t domain.Trip) error {
	switch {
	case t.CustomerName == "":
		return fmt.Errorf("%w: customer name is required", domain.ErrValidation)
	case !validPhone(t.CustomerPhone):
		return fmt.Errorf("%w: customer phone must be a 10 digit mobile number", domain.ErrValidation)
	case t.VehicleID == uuid.Nil:
		return fmt.Errorf("%w: vehicle is required", domain.ErrValidation)
	case t.DriverID == uuid.Nil:
		return fmt.Errorf("%w: driver is required", domain.ErrValidation)
	case t.StartDate.IsZero() || t.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	case t.EndDate.Before(t.StartDate):
		return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	case t.PassengersCount < 0:
		return fmt.Errorf("%w: passengers count must not be negative", domain.ErrValidation)
	case t.RentAmount < 0 || t.AdvancePayment < 0:
		return fmt.Errorf("%w: amounts must not be negative", domain.ErrValidation)
	case t.AdvancePayment > t.RentAmount:
		return fmt.Errorf("%w: advance payment must not exceed rent amount", domain.ErrValidation)
	case t.Status != "" && !t.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
