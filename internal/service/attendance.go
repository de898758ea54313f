package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
)

// AttendanceService records daily driver attendance.
type AttendanceService struct {
	repo    repo.AttendanceRepo
	drivers repo.DriverRepo
	clock   schedule.Clock
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(r repo.AttendanceRepo, drivers repo.DriverRepo, clock schedule.Clock) *AttendanceService {
	return &AttendanceService{repo: r, drivers: drivers, clock: clock}
}

// Mark records attendance for a driver and day, replacing an earlier mark for
// the same day. Drivers may only mark their own attendance and not for a
// future day.
func (s *AttendanceService) Mark(ctx context.Context, a domain.Attendance, actor domain.Actor) (domain.Attendance, error) {
	if !actor.CanAccessDriver(a.DriverID) {
		return domain.Attendance{}, fmt.Errorf("%w: cannot mark attendance for another driver", domain.ErrForbidden)
	}
	if !a.Status.Valid() {
		return domain.Attendance{}, fmt.Errorf("%w: status must be Present, Absent or Leave", domain.ErrValidation)
	}
	if a.Date.IsZero() {
		return domain.Attendance{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	a.Date = schedule.DayStart(a.Date)
	if !actor.IsAdmin() && a.Date.After(s.clock.Today()) {
		return domain.Attendance{}, fmt.Errorf("%w: cannot mark attendance for a future day", domain.ErrValidation)
	}
	a.Notes = strings.TrimSpace(a.Notes)

	if _, err := s.drivers.GetByID(ctx, a.DriverID); err != nil {
		return domain.Attendance{}, fmt.Errorf("service.AttendanceService.Mark: %w", err)
	}
	saved, err := s.repo.Upsert(ctx, a)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("service.AttendanceService.Mark: %w", err)
	}
	return saved, nil
}

// Month returns a driver's attendance for the month given as "YYYY-MM".
// An empty month means the current business month.
// Always returns a non-nil slice.
func (s *AttendanceService) Month(ctx context.Context, driverID uuid.UUID, month string, actor domain.Actor) ([]domain.Attendance, error) {
	if !actor.CanAccessDriver(driverID) {
		return nil, fmt.Errorf("%w: cannot read attendance of another driver", domain.ErrForbidden)
	}
	from, to, err := s.monthRange(month)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListRange(ctx, driverID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service.AttendanceService.Month: %w", err)
	}
	if records == nil {
		return []domain.Attendance{}, nil
	}
	return records, nil
}

// monthRange returns the first and last day of month.
func (s *AttendanceService) monthRange(month string) (time.Time, time.Time, error) {
	var first time.Time
	if month == "" {
		today := s.clock.Today()
		first = schedule.Date(today.Year(), today.Month(), 1)
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be YYYY-MM", domain.ErrValidation)
		}
		first = parsed
	}
	return first, first.AddDate(0, 1, -1), nil
}
