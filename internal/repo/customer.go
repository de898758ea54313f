package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// CustomerRepo defines the persistence operations for Customers.
type CustomerRepo interface {
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	// GetByPhone returns domain.ErrNotFound when no customer has that phone.
	GetByPhone(ctx context.Context, phone string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type pgCustomerRepo struct {
	db db
}

// NewCustomerRepo constructs a CustomerRepo backed by the provided db connection.
func NewCustomerRepo(db db) CustomerRepo {
	return &pgCustomerRepo{db: db}
}

const customerColumns = `id, name, phone, address, created_at`

func (r *pgCustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	const q = `
		INSERT INTO customers (name, phone, address)
		VALUES (@name, @phone, @address)
		RETURNING ` + customerColumns

	args := pgx.NamedArgs{"name": c.Name, "phone": c.Phone, "address": c.Address}
	result, err := scanCustomer(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgCustomerRepo) GetByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE phone = @phone`

	result, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"phone": phone}))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.GetByPhone: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.List: %w", err)
	}
	customers, err := collect(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.List: %w", err)
	}
	return customers, nil
}

func scanCustomer(s scanner) (domain.Customer, error) {
	var (
		c  domain.Customer
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Name, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
		return domain.Customer{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
