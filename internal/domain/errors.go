package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a trip would double-book a vehicle or driver.
// It is raised both by the service pre-check and by the database exclusion
// constraint. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned when a trip status change is not allowed
// from the trip's current status. Handlers should map this to HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden is returned when the caller's role does not permit the action
// on the requested resource (e.g. a driver touching another driver's trip).
var ErrForbidden = errors.New("forbidden")
