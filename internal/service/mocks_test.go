package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
	"github.com/pkordes/travel-desk/internal/service"
)

// ---- mock repos ------------------------------------------------------------
// Hand-written test doubles. Unset funcs panic when called, so a test fails
// loudly if the service touches a repo it should not.

type mockTripRepo struct {
	create       func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list         func(ctx context.Context) ([]domain.Trip, error)
	update       func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	updateStatus func(ctx context.Context, id uuid.UUID, s domain.TripStatus) (domain.Trip, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripRepo) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, s domain.TripStatus) (domain.Trip, error) {
	return m.updateStatus(ctx, id, s)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockVehicleRepo struct {
	create    func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	list      func(ctx context.Context) ([]domain.Vehicle, error)
	update    func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	setStatus func(ctx context.Context, id uuid.UUID, s domain.ResourceStatus) error
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) { return m.list(ctx) }
func (m *mockVehicleRepo) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, v)
}
func (m *mockVehicleRepo) SetStatus(ctx context.Context, id uuid.UUID, s domain.ResourceStatus) error {
	return m.setStatus(ctx, id, s)
}
func (m *mockVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.VehicleRepo = (*mockVehicleRepo)(nil)

type mockDriverRepo struct {
	create    func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	list      func(ctx context.Context) ([]domain.Driver, error)
	update    func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	setStatus func(ctx context.Context, id uuid.UUID, s domain.ResourceStatus) error
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverRepo) List(ctx context.Context) ([]domain.Driver, error) { return m.list(ctx) }
func (m *mockDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.update(ctx, d)
}
func (m *mockDriverRepo) SetStatus(ctx context.Context, id uuid.UUID, s domain.ResourceStatus) error {
	return m.setStatus(ctx, id, s)
}
func (m *mockDriverRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.DriverRepo = (*mockDriverRepo)(nil)

type mockCustomerRepo struct {
	create     func(ctx context.Context, c domain.Customer) (domain.Customer, error)
	getByPhone func(ctx context.Context, phone string) (domain.Customer, error)
	list       func(ctx context.Context) ([]domain.Customer, error)
}

func (m *mockCustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return m.create(ctx, c)
}
func (m *mockCustomerRepo) GetByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	return m.getByPhone(ctx, phone)
}
func (m *mockCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) { return m.list(ctx) }

var _ repo.CustomerRepo = (*mockCustomerRepo)(nil)

type mockExpenseRepo struct {
	create func(ctx context.Context, e domain.Expense) (domain.Expense, error)
	list   func(ctx context.Context, from, to time.Time) ([]domain.Expense, error)
	total  func(ctx context.Context) (float64, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	return m.create(ctx, e)
}
func (m *mockExpenseRepo) List(ctx context.Context, from, to time.Time) ([]domain.Expense, error) {
	return m.list(ctx, from, to)
}
func (m *mockExpenseRepo) Total(ctx context.Context) (float64, error)     { return m.total(ctx) }
func (m *mockExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.ExpenseRepo = (*mockExpenseRepo)(nil)

type mockAttendanceRepo struct {
	upsert    func(ctx context.Context, a domain.Attendance) (domain.Attendance, error)
	listRange func(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.Attendance, error)
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, a domain.Attendance) (domain.Attendance, error) {
	return m.upsert(ctx, a)
}
func (m *mockAttendanceRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.Attendance, error) {
	return m.listRange(ctx, driverID, from, to)
}

var _ repo.AttendanceRepo = (*mockAttendanceRepo)(nil)

type mockInvoiceRepo struct {
	create func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	list   func(ctx context.Context) ([]domain.Invoice, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.create(ctx, inv)
}
func (m *mockInvoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) { return m.list(ctx) }

var _ repo.InvoiceRepo = (*mockInvoiceRepo)(nil)

// ---- collaborators ---------------------------------------------------------

// recordingNotifier captures every topic a service reports as changed.
type recordingNotifier struct {
	topics []events.Topic
}

func (r *recordingNotifier) Changed(_ context.Context, topics ...events.Topic) {
	r.topics = append(r.topics, topics...)
}

var _ service.ChangeNotifier = (*recordingNotifier)(nil)

// recordingSyncer captures SyncTrip calls instead of writing statuses.
type recordingSyncer struct {
	calls []syncCall
}

type syncCall struct {
	trips  []domain.Trip
	after  domain.Trip
	before *domain.Trip
}

func (r *recordingSyncer) SyncTrip(_ context.Context, trips []domain.Trip, after domain.Trip, before *domain.Trip) service.SyncReport {
	r.calls = append(r.calls, syncCall{trips: trips, after: after, before: before})
	return service.SyncReport{}
}

var _ service.ResourceSyncer = (*recordingSyncer)(nil)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func june(day int) time.Time { return schedule.Date(2025, time.June, day) }

// today is the fixed business day used across service tests.
var today = schedule.FixedClock(june(10))

var (
	admin = domain.Actor{Role: domain.RoleAdmin, Subject: "admin-1"}
)

func driverActor(id uuid.UUID) domain.Actor {
	return domain.Actor{Role: domain.RoleDriver, DriverID: id, Subject: "driver-" + id.String()}
}
