package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/invoice"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
	"github.com/pkordes/travel-desk/internal/storage"
)

// InvoiceRenderer turns an invoice document into file bytes.
// *invoice.PDFRenderer satisfies it.
type InvoiceRenderer interface {
	Render(doc invoice.Document) ([]byte, error)
}

// InvoiceService generates, stores and lists trip invoices.
type InvoiceService struct {
	trips    repo.TripRepo
	vehicles repo.VehicleRepo
	drivers  repo.DriverRepo
	invoices repo.InvoiceRepo
	renderer InvoiceRenderer
	store    storage.BlobStore
	clock    schedule.Clock
	now      func() time.Time
	log      *slog.Logger
}

// InvoiceDeps groups the collaborators of an InvoiceService.
type InvoiceDeps struct {
	Trips    repo.TripRepo
	Vehicles repo.VehicleRepo
	Drivers  repo.DriverRepo
	Invoices repo.InvoiceRepo
	Renderer InvoiceRenderer
	Store    storage.BlobStore
	Clock    schedule.Clock
	// Now defaults to time.Now; tests pin it to get stable invoice numbers.
	Now func() time.Time
	Log *slog.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(d InvoiceDeps) *InvoiceService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{
		trips:    d.Trips,
		vehicles: d.Vehicles,
		drivers:  d.Drivers,
		invoices: d.Invoices,
		renderer: d.Renderer,
		store:    d.Store,
		clock:    d.Clock,
		now:      now,
		log:      d.Log,
	}
}

// Generate renders an invoice for the trip, uploads the PDF and records the
// invoice metadata. Unresolvable vehicle or driver names degrade to
// placeholders instead of failing.
func (s *InvoiceService) Generate(ctx context.Context, tripID uuid.UUID, actor domain.Actor) (domain.Invoice, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: %w", err)
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: %w", err)
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: %w", err)
	}

	dir := newDirectory(vehicles, drivers)
	vehicleName, vehicleNumber := dir.vehicle(trip.VehicleID)

	now := s.now()
	number := fmt.Sprintf("INV-%d", now.UnixMilli())
	doc := invoice.Document{
		Number:          number,
		IssuedOn:        s.clock.Today(),
		CustomerName:    trip.CustomerName,
		CustomerPhone:   trip.CustomerPhone,
		CustomerAddress: trip.CustomerAddress,
		VehicleName:     vehicleName,
		VehicleNumber:   vehicleNumber,
		DriverName:      dir.driver(trip.DriverID),
		Route:           trip.Route(),
		StartDate:       trip.StartDate,
		EndDate:         trip.EndDate,
		Passengers:      trip.PassengersCount,
		RentAmount:      trip.RentAmount,
		AdvancePayment:  trip.AdvancePayment,
		Remaining:       trip.RemainingPayment,
	}

	body, err := s.renderer.Render(doc)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: %w", err)
	}

	key := fmt.Sprintf("invoices/invoice_%s_%d.pdf", number, now.UnixMilli())
	url, err := s.store.Put(ctx, storage.Object{Key: key, Body: body, ContentType: invoice.ContentType})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: upload: %w", err)
	}

	saved, err := s.invoices.Create(ctx, domain.Invoice{
		TripID:        trip.ID,
		InvoiceNumber: number,
		PDFURL:        url,
		StorageKey:    key,
		GeneratedBy:   actor.Subject,
	})
	if err != nil {
		// Do not leave an orphaned file behind a failed insert.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("orphaned invoice file", "key", key, "error", delErr)
		}
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Generate: %w", err)
	}
	return saved, nil
}

// List returns all invoices, newest first. Always returns a non-nil slice.
func (s *InvoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	list, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.InvoiceService.List: %w", err)
	}
	if list == nil {
		return []domain.Invoice{}, nil
	}
	return list, nil
}
