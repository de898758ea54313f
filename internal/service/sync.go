package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
)

// SyncFailure records one resource whose status could not be written.
type SyncFailure struct {
	Resource domain.ResourceRef
	Err      error
}

// SyncReport summarises a synchronization pass.
type SyncReport struct {
	Checked int
	Updated int
	Failed  []SyncFailure
}

func (r *SyncReport) merge(other SyncReport) {
	r.Checked += other.Checked
	r.Updated += other.Updated
	r.Failed = append(r.Failed, other.Failed...)
}

// StatusSynchronizer keeps the stored Vehicle and Driver status in line with
// the status implied by the trip list. A resource is On Trip exactly when a
// non-cancelled trip assigned to it covers today.
//
// Writes happen only when the stored status differs from the effective one,
// so repeated passes over unchanged data are free. Resources are processed
// one at a time; a failure on one is logged and never stops the rest.
type StatusSynchronizer struct {
	trips    repo.TripRepo
	vehicles repo.VehicleRepo
	drivers  repo.DriverRepo
	clock    schedule.Clock
	log      *slog.Logger
}

// NewStatusSynchronizer constructs a StatusSynchronizer.
func NewStatusSynchronizer(trips repo.TripRepo, vehicles repo.VehicleRepo, drivers repo.DriverRepo, clock schedule.Clock, log *slog.Logger) *StatusSynchronizer {
	return &StatusSynchronizer{trips: trips, vehicles: vehicles, drivers: drivers, clock: clock, log: log}
}

// SyncResource brings one resource's stored status in line with trips and
// returns the effective status.
func (s *StatusSynchronizer) SyncResource(ctx context.Context, ref domain.ResourceRef, trips []domain.Trip) (domain.ResourceStatus, error) {
	current, err := s.storedStatus(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("service.StatusSynchronizer.SyncResource: %s: %w", ref, err)
	}
	status, _, err := s.apply(ctx, ref, current, trips, s.clock.Today())
	if err != nil {
		return "", fmt.Errorf("service.StatusSynchronizer.SyncResource: %s: %w", ref, err)
	}
	return status, nil
}

// SyncAll synchronizes every vehicle and then every driver against trips.
// The stored status is taken from the given slices rather than re-read.
func (s *StatusSynchronizer) SyncAll(ctx context.Context, vehicles []domain.Vehicle, drivers []domain.Driver, trips []domain.Trip) SyncReport {
	today := s.clock.Today()
	var report SyncReport

	for _, v := range vehicles {
		s.record(ctx, &report, domain.VehicleRef(v.ID), v.Status, trips, today)
	}
	for _, d := range drivers {
		s.record(ctx, &report, domain.DriverRef(d.ID), d.Status, trips, today)
	}
	return report
}

// SyncTrip re-synchronizes the vehicle and driver of after. When before is
// non-nil and assigned a different vehicle or driver, those are synchronized
// too so a reassignment frees the old resource. trips must already reflect
// the change (after included, or removed for a delete).
func (s *StatusSynchronizer) SyncTrip(ctx context.Context, trips []domain.Trip, after domain.Trip, before *domain.Trip) SyncReport {
	refs := []domain.ResourceRef{domain.VehicleRef(after.VehicleID), domain.DriverRef(after.DriverID)}
	if before != nil {
		if before.VehicleID != after.VehicleID {
			refs = append(refs, domain.VehicleRef(before.VehicleID))
		}
		if before.DriverID != after.DriverID {
			refs = append(refs, domain.DriverRef(before.DriverID))
		}
	}

	var report SyncReport
	for _, ref := range refs {
		if ref.ID == uuid.Nil {
			continue
		}
		report.Checked++
		current, err := s.storedStatus(ctx, ref)
		if err == nil {
			var changed bool
			_, changed, err = s.apply(ctx, ref, current, trips, s.clock.Today())
			if changed {
				report.Updated++
			}
		}
		if err != nil {
			s.fail(&report, ref, err)
		}
	}
	return report
}

// Reconcile loads fresh snapshots of trips, vehicles and drivers and runs
// SyncAll over them. It returns an error only if a snapshot cannot be loaded.
func (s *StatusSynchronizer) Reconcile(ctx context.Context) (SyncReport, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("service.StatusSynchronizer.Reconcile: %w", err)
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("service.StatusSynchronizer.Reconcile: %w", err)
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("service.StatusSynchronizer.Reconcile: %w", err)
	}

	report := s.SyncAll(ctx, vehicles, drivers, trips)
	s.log.Info("status reconciliation finished",
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *StatusSynchronizer) record(ctx context.Context, report *SyncReport, ref domain.ResourceRef, current domain.ResourceStatus, trips []domain.Trip, today time.Time) {
	report.Checked++
	_, changed, err := s.apply(ctx, ref, current, trips, today)
	if err != nil {
		s.fail(report, ref, err)
		return
	}
	if changed {
		report.Updated++
	}
}

func (s *StatusSynchronizer) fail(report *SyncReport, ref domain.ResourceRef, err error) {
	s.log.Error("status sync failed",
		"resource_type", string(ref.Type),
		"resource_id", ref.ID.String(),
		"error", err,
	)
	report.Failed = append(report.Failed, SyncFailure{Resource: ref, Err: err})
}

// apply writes the effective status for ref if it differs from current.
func (s *StatusSynchronizer) apply(ctx context.Context, ref domain.ResourceRef, current domain.ResourceStatus, trips []domain.Trip, today time.Time) (domain.ResourceStatus, bool, error) {
	want := schedule.EffectiveStatus(ref, trips, today)
	if want == current {
		return want, false, nil
	}

	var err error
	switch ref.Type {
	case domain.ResourceVehicle:
		err = s.vehicles.SetStatus(ctx, ref.ID, want)
	case domain.ResourceDriver:
		err = s.drivers.SetStatus(ctx, ref.ID, want)
	default:
		err = fmt.Errorf("%w: unknown resource type %q", domain.ErrValidation, ref.Type)
	}
	if err != nil {
		return "", false, err
	}
	return want, true, nil
}

func (s *StatusSynchronizer) storedStatus(ctx context.Context, ref domain.ResourceRef) (domain.ResourceStatus, error) {
	switch ref.Type {
	case domain.ResourceVehicle:
		v, err := s.vehicles.GetByID(ctx, ref.ID)
		return v.Status, err
	case domain.ResourceDriver:
		d, err := s.drivers.GetByID(ctx, ref.ID)
		return d.Status, err
	}
	return "", fmt.Errorf("%w: unknown resource type %q", domain.ErrValidation, ref.Type)
}
