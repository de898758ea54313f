// Package handler implements the HTTP API of the Travel Desk backend.
// All handlers are methods on Server. They are split into domain-specific
// files (trip.go, fleet.go, etc.) but share the same Server struct so they
// can reach its dependencies; Routes wires them onto a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/middleware"
	"github.com/pkordes/travel-desk/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without touching the database or the service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Trip, error)
	List(ctx context.Context, filter domain.TripFilter, actor domain.Actor) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TripStatus, actor domain.Actor) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AvailabilityChecker answers "what is free for these dates".
type AvailabilityChecker interface {
	Check(ctx context.Context, start, end time.Time, excludeTripID uuid.UUID) (service.Availability, error)
}

// SyncRunner runs a full status reconciliation pass.
type SyncRunner interface {
	Run(ctx context.Context) (service.SyncReport, error)
}

// VehicleServicer defines the vehicle operations the handlers depend on.
type VehicleServicer interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
	Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DriverServicer defines the driver operations the handlers depend on.
type DriverServicer interface {
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	List(ctx context.Context) ([]domain.Driver, error)
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttendanceServicer defines the attendance operations.
type AttendanceServicer interface {
	Mark(ctx context.Context, a domain.Attendance, actor domain.Actor) (domain.Attendance, error)
	Month(ctx context.Context, driverID uuid.UUID, month string, actor domain.Actor) ([]domain.Attendance, error)
}

// CustomerLister lists customers.
type CustomerLister interface {
	List(ctx context.Context) ([]domain.Customer, error)
}

// AccountsServicer defines the expense and financial summary operations.
type AccountsServicer interface {
	CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	ListExpenses(ctx context.Context, from, to time.Time) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context) (domain.FinancialSummary, error)
}

// InvoiceServicer generates and lists invoices.
type InvoiceServicer interface {
	Generate(ctx context.Context, tripID uuid.UUID, actor domain.Actor) (domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
}

// ExportServicer defines the operation for exporting trip data.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Subscriber is the live snapshot source behind /ws. *events.Hub satisfies it.
type Subscriber interface {
	Subscribe(topic events.Topic, l events.Listener) (unsubscribe func())
}

// Deps groups the Server's collaborators. Any of them may be nil in tests
// that only exercise a subset of routes.
type Deps struct {
	Trips        TripServicer
	Availability AvailabilityChecker
	Sync         SyncRunner
	Vehicles     VehicleServicer
	Drivers      DriverServicer
	Attendance   AttendanceServicer
	Customers    CustomerLister
	Accounts     AccountsServicer
	Invoices     InvoiceServicer
	Export       ExportServicer
	Live         Subscriber
	// Files serves locally stored blobs under /files. Nil when blobs live
	// in S3.
	Files http.Handler
	Log   *slog.Logger
}

// Server holds every handler dependency.
type Server struct {
	trips        TripServicer
	availability AvailabilityChecker
	sync         SyncRunner
	vehicles     VehicleServicer
	drivers      DriverServicer
	attendance   AttendanceServicer
	customers    CustomerLister
	accounts     AccountsServicer
	invoices     InvoiceServicer
	export       ExportServicer
	live         Subscriber
	files        http.Handler
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		trips:        d.Trips,
		availability: d.Availability,
		sync:         d.Sync,
		vehicles:     d.Vehicles,
		drivers:      d.Drivers,
		attendance:   d.Attendance,
		customers:    d.Customers,
		accounts:     d.Accounts,
		invoices:     d.Invoices,
		export:       d.Export,
		live:         d.Live,
		files:        d.Files,
		log:          log,
	}
}

// RouteOptions configures the authenticated part of the router.
type RouteOptions struct {
	// Secret verifies bearer tokens.
	Secret []byte
	// Limit, when set, runs after authentication so clients are keyed by
	// token subject rather than address.
	Limit func(http.Handler) http.Handler
}

// Routes returns the API router. Global middleware (request IDs, logging,
// recovery, CORS, body limits) is applied by the caller.
func (s *Server) Routes(opts RouteOptions) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)
	if s.files != nil {
		r.Handle("/files/*", http.StripPrefix("/files", s.files))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Secret))
		if opts.Limit != nil {
			r.Use(opts.Limit)
		}

		// Any authenticated caller; services enforce ownership.
		r.Get("/ws", s.serveLive)
		r.Get("/trips", s.listTrips)
		r.Get("/trips/{id}", s.getTrip)
		r.Patch("/trips/{id}/status", s.updateTripStatus)
		r.Put("/drivers/{id}/attendance/{date}", s.markAttendance)
		r.Get("/drivers/{id}/attendance", s.listAttendance)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/trips", s.createTrip)
			r.Put("/trips/{id}", s.updateTrip)
			r.Delete("/trips/{id}", s.deleteTrip)
			r.Post("/trips/{id}/invoice", s.generateInvoice)
			r.Get("/invoices", s.listInvoices)

			r.Get("/availability", s.getAvailability)
			r.Post("/sync", s.runSync)

			r.Get("/vehicles", s.listVehicles)
			r.Post("/vehicles", s.createVehicle)
			r.Get("/vehicles/{id}", s.getVehicle)
			r.Put("/vehicles/{id}", s.updateVehicle)
			r.Delete("/vehicles/{id}", s.deleteVehicle)

			r.Get("/drivers", s.listDrivers)
			r.Post("/drivers", s.createDriver)
			r.Get("/drivers/{id}", s.getDriver)
			r.Put("/drivers/{id}", s.updateDriver)
			r.Delete("/drivers/{id}", s.deleteDriver)

			r.Get("/customers", s.listCustomers)
			r.Get("/expenses", s.listExpenses)
			r.Post("/expenses", s.createExpense)
			r.Delete("/expenses/{id}", s.deleteExpense)
			r.Get("/accounts/summary", s.getSummary)
			r.Get("/export", s.getExport)
		})
	})

	return r
}
