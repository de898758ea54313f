package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/handler"
	"github.com/pkordes/travel-desk/internal/middleware"
	"github.com/pkordes/travel-desk/internal/service"
)

var testSecret = []byte("handler-test-secret")

// ---- mocks -----------------------------------------------------------------
// Each mock is a struct of func fields. Set only the fields your test needs;
// an unexpected call panics on the nil func, which fails the test loudly.

type mockTripServicer struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Trip, error)
	list         func(ctx context.Context, filter domain.TripFilter, actor domain.Actor) ([]domain.Trip, error)
	update       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	updateStatus func(ctx context.Context, id uuid.UUID, next domain.TripStatus, actor domain.Actor) (domain.Trip, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID, a domain.Actor) (domain.Trip, error) {
	return m.getByID(ctx, id, a)
}
func (m *mockTripServicer) List(ctx context.Context, f domain.TripFilter, a domain.Actor) ([]domain.Trip, error) {
	return m.list(ctx, f, a)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TripStatus, a domain.Actor) (domain.Trip, error) {
	return m.updateStatus(ctx, id, next, a)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockAvailability struct {
	check func(ctx context.Context, start, end time.Time, exclude uuid.UUID) (service.Availability, error)
}

func (m *mockAvailability) Check(ctx context.Context, start, end time.Time, exclude uuid.UUID) (service.Availability, error) {
	return m.check(ctx, start, end, exclude)
}

var _ handler.AvailabilityChecker = (*mockAvailability)(nil)

type mockSyncRunner struct {
	run func(ctx context.Context) (service.SyncReport, error)
}

func (m *mockSyncRunner) Run(ctx context.Context) (service.SyncReport, error) { return m.run(ctx) }

var _ handler.SyncRunner = (*mockSyncRunner)(nil)

type mockVehicleServicer struct {
	create  func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	list    func(ctx context.Context) ([]domain.Vehicle, error)
	update  func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicleServicer) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleServicer) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}
func (m *mockVehicleServicer) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, v)
}
func (m *mockVehicleServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.VehicleServicer = (*mockVehicleServicer)(nil)

type mockDriverServicer struct {
	create  func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	list    func(ctx context.Context) ([]domain.Driver, error)
	update  func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverServicer) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverServicer) List(ctx context.Context) ([]domain.Driver, error) {
	return m.list(ctx)
}
func (m *mockDriverServicer) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.update(ctx, d)
}
func (m *mockDriverServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.DriverServicer = (*mockDriverServicer)(nil)

type mockAttendanceServicer struct {
	mark  func(ctx context.Context, a domain.Attendance, actor domain.Actor) (domain.Attendance, error)
	month func(ctx context.Context, driverID uuid.UUID, month string, actor domain.Actor) ([]domain.Attendance, error)
}

func (m *mockAttendanceServicer) Mark(ctx context.Context, a domain.Attendance, actor domain.Actor) (domain.Attendance, error) {
	return m.mark(ctx, a, actor)
}
func (m *mockAttendanceServicer) Month(ctx context.Context, driverID uuid.UUID, month string, actor domain.Actor) ([]domain.Attendance, error) {
	return m.month(ctx, driverID, month, actor)
}

var _ handler.AttendanceServicer = (*mockAttendanceServicer)(nil)

type mockCustomerLister struct {
	list func(ctx context.Context) ([]domain.Customer, error)
}

func (m *mockCustomerLister) List(ctx context.Context) ([]domain.Customer, error) { return m.list(ctx) }

var _ handler.CustomerLister = (*mockCustomerLister)(nil)

type mockAccountsServicer struct {
	createExpense func(ctx context.Context, e domain.Expense) (domain.Expense, error)
	listExpenses  func(ctx context.Context, from, to time.Time) ([]domain.Expense, error)
	deleteExpense func(ctx context.Context, id uuid.UUID) error
	summary       func(ctx context.Context) (domain.FinancialSummary, error)
}

func (m *mockAccountsServicer) CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	return m.createExpense(ctx, e)
}
func (m *mockAccountsServicer) ListExpenses(ctx context.Context, from, to time.Time) ([]domain.Expense, error) {
	return m.listExpenses(ctx, from, to)
}
func (m *mockAccountsServicer) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return m.deleteExpense(ctx, id)
}
func (m *mockAccountsServicer) Summary(ctx context.Context) (domain.FinancialSummary, error) {
	return m.summary(ctx)
}

var _ handler.AccountsServicer = (*mockAccountsServicer)(nil)

type mockInvoiceServicer struct {
	generate func(ctx context.Context, tripID uuid.UUID, actor domain.Actor) (domain.Invoice, error)
	list     func(ctx context.Context) ([]domain.Invoice, error)
}

func (m *mockInvoiceServicer) Generate(ctx context.Context, tripID uuid.UUID, actor domain.Actor) (domain.Invoice, error) {
	return m.generate(ctx, tripID, actor)
}
func (m *mockInvoiceServicer) List(ctx context.Context) ([]domain.Invoice, error) {
	return m.list(ctx)
}

var _ handler.InvoiceServicer = (*mockInvoiceServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given dependencies into the real
// chi router, including authentication, exactly as main.go does.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return handler.NewServer(d).Routes(handler.RouteOptions{Secret: testSecret})
}

func token(t *testing.T, actor domain.Actor) string {
	t.Helper()
	tok, err := middleware.SignToken(testSecret, actor, time.Hour)
	require.NoError(t, err)
	return tok
}

func adminActor() domain.Actor {
	return domain.Actor{Role: domain.RoleAdmin, Subject: "admin@desk"}
}

func driverActor(id uuid.UUID) domain.Actor {
	return domain.Actor{Role: domain.RoleDriver, DriverID: id, Subject: "driver-" + id.String()}
}

// do sends a request as actor (nil body for none) and returns the recorder.
func do(t *testing.T, h http.Handler, actor domain.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor.Role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, actor))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func june(day int) time.Time {
	return time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		CustomerName:     "Asha Rao",
		CustomerPhone:    "9876543210",
		VehicleID:        uuid.New(),
		DriverID:         uuid.New(),
		StartDate:        june(10),
		EndDate:          june(12),
		FromLocation:     "Pune",
		ToLocation:       "Goa",
		PassengersCount:  4,
		RentAmount:       12000,
		AdvancePayment:   2000,
		RemainingPayment: 10000,
		Status:           domain.TripUpcoming,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

// tripBody is a valid create/update request body.
func tripBody(tr domain.Trip) map[string]any {
	return map[string]any{
		"customer_name":    tr.CustomerName,
		"customer_phone":   tr.CustomerPhone,
		"vehicle_id":       tr.VehicleID,
		"driver_id":        tr.DriverID,
		"start_date":       tr.StartDate.Format("2006-01-02"),
		"end_date":         tr.EndDate.Format("2006-01-02"),
		"from_location":    tr.FromLocation,
		"to_location":      tr.ToLocation,
		"passengers_count": tr.PassengersCount,
		"rent_amount":      tr.RentAmount,
		"advance_payment":  tr.AdvancePayment,
	}
}
