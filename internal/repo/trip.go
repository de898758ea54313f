package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	// Returns domain.ErrConflict if the trip overlaps a live trip for the same
	// vehicle or driver.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date descending.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists
	// and domain.ErrConflict on overlap.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateStatus sets only the status column.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, customer_id, customer_name, customer_phone, customer_address,
		vehicle_id, driver_id, start_date, end_date, from_location, to_location,
		passengers_count, rent_amount, advance_payment, remaining_payment, status,
		created_at, updated_at`

func tripArgs(t domain.Trip) pgx.NamedArgs {
	var customerID *uuid.UUID
	if t.CustomerID != uuid.Nil {
		customerID = &t.CustomerID
	}
	return pgx.NamedArgs{
		"id":                t.ID,
		"customer_id":       customerID, // nil becomes NULL
		"customer_name":     t.CustomerName,
		"customer_phone":    t.CustomerPhone,
		"customer_address":  t.CustomerAddress,
		"vehicle_id":        t.VehicleID,
		"driver_id":         t.DriverID,
		"start_date":        pgtype.Date{Time: t.StartDate, Valid: true},
		"end_date":          pgtype.Date{Time: t.EndDate, Valid: true},
		"from_location":     t.FromLocation,
		"to_location":       t.ToLocation,
		"passengers_count":  t.PassengersCount,
		"rent_amount":       t.RentAmount,
		"advance_payment":   t.AdvancePayment,
		"remaining_payment": t.RemainingPayment,
		"status":            string(t.Status),
	}
}

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (customer_id, customer_name, customer_phone, customer_address,
			vehicle_id, driver_id, start_date, end_date, from_location, to_location,
			passengers_count, rent_amount, advance_payment, remaining_payment, status)
		VALUES (@customer_id, @customer_name, @customer_phone, @customer_address,
			@vehicle_id, @driver_id, @start_date, @end_date, @from_location, @to_location,
			@passengers_count, @rent_amount, @advance_payment, @remaining_payment, @status)
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, tripArgs(trip)))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

// List returns all trips ordered by start_date descending (most recent first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	trips, err := collect(rows, scanTrip)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET customer_id       = @customer_id,
		    customer_name     = @customer_name,
		    customer_phone    = @customer_phone,
		    customer_address  = @customer_address,
		    vehicle_id        = @vehicle_id,
		    driver_id         = @driver_id,
		    start_date        = @start_date,
		    end_date          = @end_date,
		    from_location     = @from_location,
		    to_location       = @to_location,
		    passengers_count  = @passengers_count,
		    rent_amount       = @rent_amount,
		    advance_payment   = @advance_payment,
		    remaining_payment = @remaining_payment,
		    status            = @status,
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, tripArgs(trip)))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

// UpdateStatus sets the status of a trip and bumps updated_at.
func (r *pgTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", mapErr(err))
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, nullable customer_id and DATE conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		customerID pgtype.UUID
		vehicleID  pgtype.UUID
		driverID   pgtype.UUID
		start, end pgtype.Date
		status     string
	)

	err := s.Scan(&id, &customerID, &t.CustomerName, &t.CustomerPhone, &t.CustomerAddress,
		&vehicleID, &driverID, &start, &end, &t.FromLocation, &t.ToLocation,
		&t.PassengersCount, &t.RentAmount, &t.AdvancePayment, &t.RemainingPayment, &status,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if customerID.Valid {
		t.CustomerID = uuid.UUID(customerID.Bytes)
	}
	t.VehicleID = uuid.UUID(vehicleID.Bytes)
	t.DriverID = uuid.UUID(driverID.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Status = domain.TripStatus(status)

	return t, nil
}
