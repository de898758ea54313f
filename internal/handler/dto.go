package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/service"
)

// ---- trips -----------------------------------------------------------------

// TripRequest is the body of POST /trips and PUT /trips/{id}. Status is only
// honoured when it is "Cancelled"; any other value is re-derived from the
// dates on save.
type TripRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required"`
	CustomerPhone   string             `json:"customer_phone" validate:"required"`
	CustomerAddress string             `json:"customer_address"`
	VehicleID       uuid.UUID          `json:"vehicle_id" validate:"required"`
	DriverID        uuid.UUID          `json:"driver_id" validate:"required"`
	StartDate       openapi_types.Date `json:"start_date" validate:"required"`
	EndDate         openapi_types.Date `json:"end_date" validate:"required"`
	FromLocation    string             `json:"from_location" validate:"required"`
	ToLocation      string             `json:"to_location" validate:"required"`
	PassengersCount int                `json:"passengers_count" validate:"gte=1"`
	RentAmount      float64            `json:"rent_amount" validate:"gte=0"`
	AdvancePayment  float64            `json:"advance_payment" validate:"gte=0"`
	Status          domain.TripStatus  `json:"status,omitempty" validate:"omitempty,oneof=Upcoming Running Completed Cancelled"`
}

func (req TripRequest) toDomain(id uuid.UUID) domain.Trip {
	return domain.Trip{
		ID:              id,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		VehicleID:       req.VehicleID,
		DriverID:        req.DriverID,
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		FromLocation:    req.FromLocation,
		ToLocation:      req.ToLocation,
		PassengersCount: req.PassengersCount,
		RentAmount:      req.RentAmount,
		AdvancePayment:  req.AdvancePayment,
		Status:          req.Status,
	}
}

// TripStatusRequest is the body of PATCH /trips/{id}/status.
type TripStatusRequest struct {
	Status domain.TripStatus `json:"status" validate:"required,oneof=Upcoming Running Completed Cancelled"`
}

// Trip is the JSON representation of a trip.
type Trip struct {
	ID               uuid.UUID          `json:"id"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone"`
	CustomerAddress  string             `json:"customer_address,omitempty"`
	VehicleID        uuid.UUID          `json:"vehicle_id"`
	DriverID         uuid.UUID          `json:"driver_id"`
	StartDate        openapi_types.Date `json:"start_date"`
	EndDate          openapi_types.Date `json:"end_date"`
	FromLocation     string             `json:"from_location"`
	ToLocation       string             `json:"to_location"`
	Route            string             `json:"route"`
	PassengersCount  int                `json:"passengers_count"`
	RentAmount       float64            `json:"rent_amount"`
	AdvancePayment   float64            `json:"advance_payment"`
	RemainingPayment float64            `json:"remaining_payment"`
	Status           domain.TripStatus  `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		CustomerName:     t.CustomerName,
		CustomerPhone:    t.CustomerPhone,
		CustomerAddress:  t.CustomerAddress,
		VehicleID:        t.VehicleID,
		DriverID:         t.DriverID,
		StartDate:        openapi_types.Date{Time: t.StartDate},
		EndDate:          openapi_types.Date{Time: t.EndDate},
		FromLocation:     t.FromLocation,
		ToLocation:       t.ToLocation,
		Route:            t.Route(),
		PassengersCount:  t.PassengersCount,
		RentAmount:       t.RentAmount,
		AdvancePayment:   t.AdvancePayment,
		RemainingPayment: t.RemainingPayment,
		Status:           t.Status,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// ---- fleet -----------------------------------------------------------------

// VehicleRequest is the body of POST /vehicles and PUT /vehicles/{id}.
// Status is derived from trips and cannot be written.
type VehicleRequest struct {
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required"`
	Type   string `json:"type" validate:"required"`
}

func (req VehicleRequest) toDomain(id uuid.UUID) domain.Vehicle {
	return domain.Vehicle{ID: id, Name: req.Name, Number: req.Number, Type: req.Type}
}

// Vehicle is the JSON representation of a vehicle.
type Vehicle struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Number    string                `json:"number"`
	Type      string                `json:"type"`
	Status    domain.ResourceStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func vehicleToResponse(v domain.Vehicle) Vehicle {
	return Vehicle{
		ID:        v.ID,
		Name:      v.Name,
		Number:    v.Number,
		Type:      v.Type,
		Status:    v.Status,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// DriverRequest is the body of POST /drivers and PUT /drivers/{id}.
type DriverRequest struct {
	Name              string     `json:"name" validate:"required"`
	Email             string     `json:"email" validate:"omitempty,email"`
	Phone             string     `json:"phone" validate:"required"`
	LicenseNumber     string     `json:"license_number" validate:"required"`
	Salary            float64    `json:"salary" validate:"gte=0"`
	AssignedVehicleID *uuid.UUID `json:"assigned_vehicle_id,omitempty"`
}

func (req DriverRequest) toDomain(id uuid.UUID) domain.Driver {
	return domain.Driver{
		ID:                id,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		LicenseNumber:     req.LicenseNumber,
		Salary:            req.Salary,
		AssignedVehicleID: req.AssignedVehicleID,
	}
}

// Driver is the JSON representation of a driver.
type Driver struct {
	ID                uuid.UUID             `json:"id"`
	Name              string                `json:"name"`
	Email             string                `json:"email,omitempty"`
	Phone             string                `json:"phone"`
	LicenseNumber     string                `json:"license_number"`
	Salary            float64               `json:"salary"`
	AssignedVehicleID *uuid.UUID            `json:"assigned_vehicle_id,omitempty"`
	Status            domain.ResourceStatus `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func driverToResponse(d domain.Driver) Driver {
	return Driver{
		ID:                d.ID,
		Name:              d.Name,
		Email:             d.Email,
		Phone:             d.Phone,
		LicenseNumber:     d.LicenseNumber,
		Salary:            d.Salary,
		AssignedVehicleID: d.AssignedVehicleID,
		Status:            d.Status,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// Customer is the JSON representation of a customer.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func customerToResponse(c domain.Customer) Customer {
	return Customer{ID: c.ID, Name: c.Name, Phone: c.Phone, Address: c.Address, CreatedAt: c.CreatedAt}
}

// ---- availability & sync ---------------------------------------------------

// VehicleOption is a vehicle with its availability for the requested range.
type VehicleOption struct {
	Vehicle
	Available bool `json:"available"`
}

// DriverOption is a driver with its availability for the requested range.
type DriverOption struct {
	Driver
	Available bool `json:"available"`
}

// Availability is the response of GET /availability.
type Availability struct {
	Vehicles []VehicleOption `json:"vehicles"`
	Drivers  []DriverOption  `json:"drivers"`
}

func availabilityToResponse(a service.Availability) Availability {
	out := Availability{
		Vehicles: make([]VehicleOption, 0, len(a.Vehicles)),
		Drivers:  make([]DriverOption, 0, len(a.Drivers)),
	}
	for _, v := range a.Vehicles {
		out.Vehicles = append(out.Vehicles, VehicleOption{Vehicle: vehicleToResponse(v.Vehicle), Available: v.Available})
	}
	for _, d := range a.Drivers {
		out.Drivers = append(out.Drivers, DriverOption{Driver: driverToResponse(d.Driver), Available: d.Available})
	}
	return out
}

// SyncFailure names a resource whose status could not be written.
type SyncFailure struct {
	Type  domain.ResourceType `json:"type"`
	ID    uuid.UUID           `json:"id"`
	Error string              `json:"error"`
}

// SyncReport is the response of POST /sync.
type SyncReport struct {
	Checked int           `json:"checked"`
	Updated int           `json:"updated"`
	Failed  []SyncFailure `json:"failed"`
}

func syncReportToResponse(r service.SyncReport) SyncReport {
	out := SyncReport{Checked: r.Checked, Updated: r.Updated, Failed: make([]SyncFailure, 0, len(r.Failed))}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, SyncFailure{Type: f.Resource.Type, ID: f.Resource.ID, Error: f.Err.Error()})
	}
	return out
}

// ---- attendance ------------------------------------------------------------

// AttendanceRequest is the body of PUT /drivers/{id}/attendance/{date}.
type AttendanceRequest struct {
	Status domain.AttendanceStatus `json:"status" validate:"required,oneof=Present Absent Leave"`
	Notes  string                  `json:"notes" validate:"max=500"`
}

// Attendance is the JSON representation of one attendance record.
type Attendance struct {
	DriverID uuid.UUID               `json:"driver_id"`
	Date     openapi_types.Date      `json:"date"`
	Status   domain.AttendanceStatus `json:"status"`
	Notes    string                  `json:"notes,omitempty"`
	MarkedAt time.Time               `json:"marked_at"`
}

func attendanceToResponse(a domain.Attendance) Attendance {
	return Attendance{
		DriverID: a.DriverID,
		Date:     openapi_types.Date{Time: a.Date},
		Status:   a.Status,
		Notes:    a.Notes,
		MarkedAt: a.MarkedAt,
	}
}

// ---- accounts --------------------------------------------------------------

// ExpenseRequest is the body of POST /expenses.
type ExpenseRequest struct {
	Type        domain.ExpenseType `json:"type" validate:"required,oneof=fuel toll driver_payment maintenance other"`
	Amount      float64            `json:"amount" validate:"gt=0"`
	Description string             `json:"description"`
	Date        openapi_types.Date `json:"date" validate:"required"`
}

func (req ExpenseRequest) toDomain() domain.Expense {
	return domain.Expense{Type: req.Type, Amount: req.Amount, Description: req.Description, Date: req.Date.Time}
}

// Expense is the JSON representation of an expense.
type Expense struct {
	ID          uuid.UUID          `json:"id"`
	Type        domain.ExpenseType `json:"type"`
	Amount      float64            `json:"amount"`
	Description string             `json:"description,omitempty"`
	Date        openapi_types.Date `json:"date"`
	CreatedAt   time.Time          `json:"created_at"`
}

func expenseToResponse(e domain.Expense) Expense {
	return Expense{
		ID:          e.ID,
		Type:        e.Type,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        openapi_types.Date{Time: e.Date},
		CreatedAt:   e.CreatedAt,
	}
}

// FinancialSummary is the response of GET /accounts/summary.
type FinancialSummary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Profit        float64 `json:"profit"`
	ProfitMargin  float64 `json:"profit_margin"`
}

// Invoice is the JSON representation of generated invoice metadata.
type Invoice struct {
	ID            uuid.UUID `json:"id"`
	TripID        uuid.UUID `json:"trip_id"`
	InvoiceNumber string    `json:"invoice_number"`
	PDFURL        string    `json:"pdf_url"`
	GeneratedBy   string    `json:"generated_by,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func invoiceToResponse(inv domain.Invoice) Invoice {
	return Invoice{
		ID:            inv.ID,
		TripID:        inv.TripID,
		InvoiceNumber: inv.InvoiceNumber,
		PDFURL:        inv.PDFURL,
		GeneratedBy:   inv.GeneratedBy,
		GeneratedAt:   inv.GeneratedAt,
	}
}

// mapSlice converts every element of in with f. The result is never nil so
// empty lists encode as [].
func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
