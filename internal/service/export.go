package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/repo"
)

// ExportService assembles a flat export of all trips with their vehicle and
// driver names resolved.
type ExportService struct {
	trips    repo.TripRepo
	vehicles repo.VehicleRepo
	drivers  repo.DriverRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, vehicles repo.VehicleRepo, drivers repo.DriverRepo) *ExportService {
	return &ExportService{trips: trips, vehicles: vehicles, drivers: drivers}
}

// Export returns one ExportRow per trip, newest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	dir := newDirectory(vehicles, drivers)
	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		vehicleName, vehicleNumber := dir.vehicle(t.VehicleID)
		rows = append(rows, domain.ExportRow{
			TripID:        t.ID.String(),
			Status:        string(t.Status),
			StartDate:     formatDate(t.StartDate),
			EndDate:       formatDate(t.EndDate),
			CustomerName:  t.CustomerName,
			CustomerPhone: t.CustomerPhone,
			Route:         t.Route(),
			VehicleName:   vehicleName,
			VehicleNumber: vehicleNumber,
			DriverName:    dir.driver(t.DriverID),
			Passengers:    t.PassengersCount,
			Rent:          t.RentAmount,
			Advance:       t.AdvancePayment,
			Remaining:     t.RemainingPayment,
		})
	}
	return rows, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
