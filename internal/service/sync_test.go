package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/service"
)

// statusStore backs the vehicle and driver mocks with in-memory statuses and
// counts SetStatus writes.
type statusStore struct {
	vehicles map[uuid.UUID]domain.ResourceStatus
	drivers  map[uuid.UUID]domain.ResourceStatus
	writes   int
	failOn   uuid.UUID
}

func newStatusStore() *statusStore {
	return &statusStore{
		vehicles: map[uuid.UUID]domain.ResourceStatus{},
		drivers:  map[uuid.UUID]domain.ResourceStatus{},
	}
}

func (s *statusStore) vehicleRepo() *mockVehicleRepo {
	return &mockVehicleRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Vehicle, error) {
			st, ok := s.vehicles[id]
			if !ok {
				return domain.Vehicle{}, domain.ErrNotFound
			}
			return domain.Vehicle{ID: id, Status: st}, nil
		},
		list: func(context.Context) ([]domain.Vehicle, error) {
			var out []domain.Vehicle
			for id, st := range s.vehicles {
				out = append(out, domain.Vehicle{ID: id, Status: st})
			}
			return out, nil
		},
		setStatus: func(_ context.Context, id uuid.UUID, st domain.ResourceStatus) error {
			if id == s.failOn {
				return errors.New("write failed")
			}
			s.writes++
			s.vehicles[id] = st
			return nil
		},
	}
}

func (s *statusStore) driverRepo() *mockDriverRepo {
	return &mockDriverRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Driver, error) {
			st, ok := s.drivers[id]
			if !ok {
				return domain.Driver{}, domain.ErrNotFound
			}
			return domain.Driver{ID: id, Status: st}, nil
		},
		list: func(context.Context) ([]domain.Driver, error) {
			var out []domain.Driver
			for id, st := range s.drivers {
				out = append(out, domain.Driver{ID: id, Status: st})
			}
			return out, nil
		},
		setStatus: func(_ context.Context, id uuid.UUID, st domain.ResourceStatus) error {
			if id == s.failOn {
				return errors.New("write failed")
			}
			s.writes++
			s.drivers[id] = st
			return nil
		},
	}
}

func (s *statusStore) vehicleList() []domain.Vehicle {
	out, _ := s.vehicleRepo().list(context.Background())
	return out
}

func (s *statusStore) driverList() []domain.Driver {
	out, _ := s.driverRepo().list(context.Background())
	return out
}

func newSynchronizer(store *statusStore, trips []domain.Trip) *service.StatusSynchronizer {
	return service.NewStatusSynchronizer(
		&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return trips, nil }},
		store.vehicleRepo(),
		store.driverRepo(),
		today,
		discardLogger(),
	)
}

func booking(vehicleID, driverID uuid.UUID, start, end time.Time, status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		DriverID:  driverID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
}

func TestStatusSynchronizer_SyncResource_WritesOnlyOnChange(t *testing.T) {
	store := newStatusStore()
	vehicleID := uuid.New()
	store.vehicles[vehicleID] = domain.StatusAvailable
	trips := []domain.Trip{booking(vehicleID, uuid.New(), june(9), june(11), domain.TripRunning)}
	s := newSynchronizer(store, trips)

	got, err := s.SyncResource(context.Background(), domain.VehicleRef(vehicleID), trips)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnTrip, got)
	assert.Equal(t, 1, store.writes)

	got, err = s.SyncResource(context.Background(), domain.VehicleRef(vehicleID), trips)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnTrip, got)
	assert.Equal(t, 1, store.writes, "second sync with unchanged data writes nothing")
}

func TestStatusSynchronizer_SyncResource_NotFound(t *testing.T) {
	s := newSynchronizer(newStatusStore(), nil)

	_, err := s.SyncResource(context.Background(), domain.DriverRef(uuid.New()), nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Scenario: vehicle V has one Running trip covering today and one Cancelled
// trip also covering today. Effective status is On Trip; cancelling the
// running trip flips it back to Available on the next sync.
func TestStatusSynchronizer_CancellationFreesVehicle(t *testing.T) {
	store := newStatusStore()
	vehicleID, driverID := uuid.New(), uuid.New()
	store.vehicles[vehicleID] = domain.StatusAvailable
	store.drivers[driverID] = domain.StatusAvailable

	running := booking(vehicleID, driverID, june(9), june(11), domain.TripRunning)
	cancelled := booking(vehicleID, driverID, june(10), june(10), domain.TripCancelled)
	trips := []domain.Trip{running, cancelled}
	s := newSynchronizer(store, trips)

	report := s.SyncTrip(context.Background(), trips, running, nil)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, domain.StatusOnTrip, store.vehicles[vehicleID])
	assert.Equal(t, domain.StatusOnTrip, store.drivers[driverID])

	running.Status = domain.TripCancelled
	trips = []domain.Trip{running, cancelled}
	s.SyncTrip(context.Background(), trips, running, nil)
	assert.Equal(t, domain.StatusAvailable, store.vehicles[vehicleID])
	assert.Equal(t, domain.StatusAvailable, store.drivers[driverID])
}

func TestStatusSynchronizer_SyncTrip_ReassignmentFreesPreviousResources(t *testing.T) {
	store := newStatusStore()
	oldVehicle, newVehicle, driverID := uuid.New(), uuid.New(), uuid.New()
	store.vehicles[oldVehicle] = domain.StatusOnTrip
	store.vehicles[newVehicle] = domain.StatusAvailable
	store.drivers[driverID] = domain.StatusOnTrip

	before := booking(oldVehicle, driverID, june(10), june(12), domain.TripRunning)
	after := before
	after.VehicleID = newVehicle
	s := newSynchronizer(store, nil)

	report := s.SyncTrip(context.Background(), []domain.Trip{after}, after, &before)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, domain.StatusAvailable, store.vehicles[oldVehicle])
	assert.Equal(t, domain.StatusOnTrip, store.vehicles[newVehicle])
	assert.Equal(t, domain.StatusOnTrip, store.drivers[driverID])
}

func TestStatusSynchronizer_SyncAll_IsIdempotent(t *testing.T) {
	store := newStatusStore()
	busyVehicle, idleVehicle, busyDriver := uuid.New(), uuid.New(), uuid.New()
	store.vehicles[busyVehicle] = domain.StatusAvailable
	store.vehicles[idleVehicle] = domain.StatusOnTrip
	store.drivers[busyDriver] = domain.StatusAvailable

	trips := []domain.Trip{
		booking(busyVehicle, busyDriver, june(10), june(10), domain.TripUpcoming),
		booking(idleVehicle, uuid.New(), june(1), june(9), domain.TripCompleted),
	}
	s := newSynchronizer(store, trips)

	first := s.SyncAll(context.Background(), store.vehicleList(), store.driverList(), trips)
	assert.Equal(t, 3, first.Checked)
	assert.Equal(t, 3, first.Updated)
	assert.Empty(t, first.Failed)

	writes := store.writes
	second := s.SyncAll(context.Background(), store.vehicleList(), store.driverList(), trips)
	assert.Equal(t, 3, second.Checked)
	assert.Zero(t, second.Updated)
	assert.Equal(t, writes, store.writes)
}

func TestStatusSynchronizer_SyncAll_FailureDoesNotAbortOthers(t *testing.T) {
	store := newStatusStore()
	broken, healthy, driverID := uuid.New(), uuid.New(), uuid.New()
	store.vehicles[broken] = domain.StatusAvailable
	store.vehicles[healthy] = domain.StatusAvailable
	store.drivers[driverID] = domain.StatusAvailable
	store.failOn = broken

	trips := []domain.Trip{
		booking(broken, driverID, june(10), june(10), domain.TripRunning),
		booking(healthy, uuid.New(), june(10), june(10), domain.TripRunning),
	}
	s := newSynchronizer(store, trips)

	report := s.SyncAll(context.Background(), store.vehicleList(), store.driverList(), trips)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, domain.VehicleRef(broken), report.Failed[0].Resource)
	assert.Equal(t, domain.StatusOnTrip, store.vehicles[healthy])
	assert.Equal(t, domain.StatusOnTrip, store.drivers[driverID])
}

func TestStatusSynchronizer_Reconcile(t *testing.T) {
	store := newStatusStore()
	vehicleID := uuid.New()
	store.vehicles[vehicleID] = domain.StatusOnTrip
	s := newSynchronizer(store, []domain.Trip{})

	report, err := s.Reconcile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, domain.StatusAvailable, store.vehicles[vehicleID])
}

func TestStatusSynchronizer_Reconcile_LoadError(t *testing.T) {
	store := newStatusStore()
	s := service.NewStatusSynchronizer(
		&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return nil, errors.New("db down") }},
		store.vehicleRepo(), store.driverRepo(), today, discardLogger(),
	)

	_, err := s.Reconcile(context.Background())

	assert.Error(t, err)
}

func TestReconciler_NotifiesOnlyWhenSomethingChanged(t *testing.T) {
	store := newStatusStore()
	vehicleID := uuid.New()
	store.vehicles[vehicleID] = domain.StatusOnTrip
	notifier := &recordingNotifier{}
	r := service.NewReconciler(newSynchronizer(store, []domain.Trip{}), notifier)

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, notifier.topics, 2)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, notifier.topics, 2, "no changes, no notification")
}
