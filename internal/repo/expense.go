package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// ExpenseRepo defines the persistence operations for Expenses.
type ExpenseRepo interface {
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)
	// List returns expenses dated within [from, to], newest first.
	// A zero from or to leaves that side of the range open.
	List(ctx context.Context, from, to time.Time) ([]domain.Expense, error)
	// Total returns the sum of all expense amounts.
	Total(ctx context.Context) (float64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db connection.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

const expenseColumns = `id, type, amount, description, date, created_at`

func (r *pgExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const q = `
		INSERT INTO expenses (type, amount, description, date)
		VALUES (@type, @amount, @description, @date)
		RETURNING ` + expenseColumns

	args := pgx.NamedArgs{
		"type":        string(e.Type),
		"amount":      e.Amount,
		"description": e.Description,
		"date":        pgtype.Date{Time: e.Date, Valid: true},
	}
	result, err := scanExpense(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgExpenseRepo) List(ctx context.Context, from, to time.Time) ([]domain.Expense, error) {
	const q = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE (@from::date IS NULL OR date >= @from::date)
		  AND (@to::date IS NULL OR date <= @to::date)
		ORDER BY date DESC, created_at DESC`

	args := pgx.NamedArgs{
		"from": pgtype.Date{Time: from, Valid: !from.IsZero()},
		"to":   pgtype.Date{Time: to, Valid: !to.IsZero()},
	}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.List: %w", err)
	}
	expenses, err := collect(rows, scanExpense)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.List: %w", err)
	}
	return expenses, nil
}

func (r *pgExpenseRepo) Total(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0)::float8 FROM expenses`

	var total float64
	if err := r.db.QueryRow(ctx, q).Scan(&total); err != nil {
		return 0, fmt.Errorf("repo.ExpenseRepo.Total: %w", err)
	}
	return total, nil
}

func (r *pgExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM expenses WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e    domain.Expense
		id   pgtype.UUID
		typ  string
		date pgtype.Date
	)
	if err := s.Scan(&id, &typ, &e.Amount, &e.Description, &date, &e.CreatedAt); err != nil {
		return domain.Expense{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	e.Type = domain.ExpenseType(typ)
	e.Date = date.Time
	return e, nil
}
