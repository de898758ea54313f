package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// DriverRepo defines the persistence operations for Drivers.
// Status is written only through SetStatus; Create and Update leave it alone.
type DriverRepo interface {
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	// List returns all drivers ordered by name.
	List(ctx context.Context) ([]domain.Driver, error)
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `id, name, email, phone, license_number, salary, assigned_vehicle_id,
		status, created_at, updated_at`

func driverArgs(d domain.Driver) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                  d.ID,
		"name":                d.Name,
		"email":               d.Email,
		"phone":               d.Phone,
		"license_number":      d.LicenseNumber,
		"salary":              d.Salary,
		"assigned_vehicle_id": d.AssignedVehicleID, // nil becomes NULL
	}
}

func (r *pgDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		INSERT INTO drivers (name, email, phone, license_number, salary, assigned_vehicle_id)
		VALUES (@name, @email, @phone, @license_number, @salary, @assigned_vehicle_id)
		RETURNING ` + driverColumns

	result, err := scanDriver(r.db.QueryRow(ctx, q, driverArgs(d)))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgDriverRepo) List(ctx context.Context) ([]domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: %w", err)
	}
	drivers, err := collect(rows, scanDriver)
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: %w", err)
	}
	return drivers, nil
}

func (r *pgDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		UPDATE drivers
		SET name                = @name,
		    email               = @email,
		    phone               = @phone,
		    license_number      = @license_number,
		    salary              = @salary,
		    assigned_vehicle_id = @assigned_vehicle_id,
		    updated_at          = now()
		WHERE id = @id
		RETURNING ` + driverColumns

	result, err := scanDriver(r.db.QueryRow(ctx, q, driverArgs(d)))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgDriverRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	const q = `UPDATE drivers SET status = @status, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.SetStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.SetStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM drivers WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d         domain.Driver
		id        pgtype.UUID
		vehicleID pgtype.UUID
		status    string
	)
	err := s.Scan(&id, &d.Name, &d.Email, &d.Phone, &d.LicenseNumber, &d.Salary, &vehicleID,
		&status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Driver{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	if vehicleID.Valid {
		v := uuid.UUID(vehicleID.Bytes)
		d.AssignedVehicleID = &v
	}
	d.Status = domain.ResourceStatus(status)
	return d, nil
}
