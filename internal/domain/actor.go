package domain

import "github.com/google/uuid"

// Role is the caller's role, taken from the bearer token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDriver
}

// Actor identifies who is making a request. DriverID is set only for drivers.
type Actor struct {
	Role     Role
	DriverID uuid.UUID
	Subject  string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccessDriver reports whether the actor may read or write data owned by
// the given driver: admins always, drivers only their own.
func (a Actor) CanAccessDriver(driverID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleDriver && a.DriverID != uuid.Nil && a.DriverID == driverID
}
