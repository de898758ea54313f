package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ResourceType distinguishes the two kinds of bookable resources.
type ResourceType string

const (
	ResourceVehicle ResourceType = "vehicle"
	ResourceDriver  ResourceType = "driver"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	return t == ResourceVehicle || t == ResourceDriver
}

// ResourceStatus is the derived availability of a vehicle or driver.
// It is a cache of what the trip set says about today; only the status
// synchronizer writes it.
type ResourceStatus string

const (
	StatusAvailable ResourceStatus = "Available"
	StatusOnTrip    ResourceStatus = "On Trip"
)

// ResourceRef identifies a single vehicle or driver.
type ResourceRef struct {
	Type ResourceType
	ID   uuid.UUID
}

// VehicleRef is shorthand for a vehicle ResourceRef.
func VehicleRef(id uuid.UUID) ResourceRef { return ResourceRef{Type: ResourceVehicle, ID: id} }

// DriverRef is shorthand for a driver ResourceRef.
func DriverRef(id uuid.UUID) ResourceRef { return ResourceRef{Type: ResourceDriver, ID: id} }

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}
