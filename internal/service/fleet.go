package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/repo"
)

var (
	phonePattern         = regexp.MustCompile(`^[6-9]\d{9}$`)
	vehicleNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{1,2}[0-9]{4}$`)
)

const minLicenseLength = 8

// VehicleService implements business logic for Vehicle operations.
// Vehicle status is owned by the StatusSynchronizer and is never taken from
// input.
type VehicleService struct {
	repo     repo.VehicleRepo
	notifier ChangeNotifier
}

// NewVehicleService constructs a VehicleService. notifier may be nil.
func NewVehicleService(r repo.VehicleRepo, notifier ChangeNotifier) *VehicleService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &VehicleService{repo: r, notifier: notifier}
}

// Create validates and persists a new vehicle with status Available.
// Returns domain.ErrConflict if the registration number is already in use.
func (s *VehicleService) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v = normalizeVehicle(v)
	if err := validateVehicle(v); err != nil {
		return domain.Vehicle{}, err
	}
	v.Status = domain.StatusAvailable
	created, err := s.repo.Create(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicVehicles)
	return created, nil
}

// GetByID returns a single vehicle.
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return v, nil
}

// List returns all vehicles ordered by name. Always returns a non-nil slice.
func (s *VehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}

// Update validates and persists changes to a vehicle's descriptive fields.
func (s *VehicleService) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v = normalizeVehicle(v)
	if err := validateVehicle(v); err != nil {
		return domain.Vehicle{}, err
	}
	updated, err := s.repo.Update(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicVehicles)
	return updated, nil
}

// Delete removes a vehicle. Trips that referenced it keep the dangling ID
// and display it as unknown.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicVehicles)
	return nil
}

func normalizeVehicle(v domain.Vehicle) domain.Vehicle {
	v.Name = strings.TrimSpace(v.Name)
	v.Type = strings.TrimSpace(v.Type)
	v.Number = NormalizeVehicleNumber(v.Number)
	return v
}

func validateVehicle(v domain.Vehicle) error {
	switch {
	case v.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case v.Type == "":
		return fmt.Errorf("%w: type is required", domain.ErrValidation)
	case !vehicleNumberPattern.MatchString(v.Number):
		return fmt.Errorf("%w: vehicle number must look like MH12AB1234", domain.ErrValidation)
	}
	return nil
}

// NormalizeVehicleNumber upper-cases a registration number and strips all
// whitespace, so "mh 12 ab 1234" becomes "MH12AB1234".
func NormalizeVehicleNumber(n string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, n))
}

// DriverService implements business logic for Driver operations.
type DriverService struct {
	repo     repo.DriverRepo
	vehicles repo.VehicleRepo
	notifier ChangeNotifier
}

// NewDriverService constructs a DriverService. notifier may be nil.
func NewDriverService(r repo.DriverRepo, vehicles repo.VehicleRepo, notifier ChangeNotifier) *DriverService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &DriverService{repo: r, vehicles: vehicles, notifier: notifier}
}

// Create validates and persists a new driver with status Available.
func (s *DriverService) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d = normalizeDriver(d)
	if err := s.validate(ctx, d); err != nil {
		return domain.Driver{}, err
	}
	d.Status = domain.StatusAvailable
	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicDrivers)
	return created, nil
}

// GetByID returns a single driver.
func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.GetByID: %w", err)
	}
	return d, nil
}

// List returns all drivers ordered by name. Always returns a non-nil slice.
func (s *DriverService) List(ctx context.Context) ([]domain.Driver, error) {
	drivers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DriverService.List: %w", err)
	}
	if drivers == nil {
		return []domain.Driver{}, nil
	}
	return drivers, nil
}

// Update validates and persists changes to a driver's profile.
func (s *DriverService) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d = normalizeDriver(d)
	if err := s.validate(ctx, d); err != nil {
		return domain.Driver{}, err
	}
	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Update: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicDrivers)
	return updated, nil
}

// Delete removes a driver.
func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.DriverService.Delete: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicDrivers)
	return nil
}

func (s *DriverService) validate(ctx context.Context, d domain.Driver) error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case !validPhone(d.Phone):
		return fmt.Errorf("%w: phone must be a 10 digit mobile number", domain.ErrValidation)
	case len(d.LicenseNumber) < minLicenseLength:
		return fmt.Errorf("%w: license number must be at least %d characters", domain.ErrValidation, minLicenseLength)
	case d.Salary < 0:
		return fmt.Errorf("%w: salary must not be negative", domain.ErrValidation)
	}
	if d.AssignedVehicleID == nil {
		return nil
	}
	if _, err := s.vehicles.GetByID(ctx, *d.AssignedVehicleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: assigned vehicle does not exist", domain.ErrValidation)
		}
		return fmt.Errorf("service.DriverService.validate: %w", err)
	}
	return nil
}

func normalizeDriver(d domain.Driver) domain.Driver {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = digitsOnly(d.Phone)
	d.LicenseNumber = strings.ToUpper(strings.TrimSpace(d.LicenseNumber))
	return d
}

// CustomerService exposes the customer directory built up by trip bookings.
type CustomerService struct {
	repo repo.CustomerRepo
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(r repo.CustomerRepo) *CustomerService {
	return &CustomerService{repo: r}
}

// List returns all customers. Always returns a non-nil slice.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CustomerService.List: %w", err)
	}
	if customers == nil {
		return []domain.Customer{}, nil
	}
	return customers, nil
}

func validPhone(p string) bool {
	return phonePattern.MatchString(p)
}

// digitsOnly drops every non-digit, so "+91 98765-43210" style input is
// compared on its digits. A leading country code is not stripped.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
