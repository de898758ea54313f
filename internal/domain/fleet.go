package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a fleet unit. Number is the registration plate, stored
// upper-case without spaces.
type Vehicle struct {
	ID        uuid.UUID
	Name      string
	Number    string
	Type      string
	Status    ResourceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Driver is a member of staff who can be assigned to trips.
// AssignedVehicleID is informational only; per-trip assignment lives on Trip.
type Driver struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             string
	LicenseNumber     string
	Salary            float64
	AssignedVehicleID *uuid.UUID
	Status            ResourceStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Customer is a person who books trips. Phone is the natural key used to
// find an existing customer when a new booking comes in.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}
