package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
)

// AccountsService records expenses and computes the financial summary.
type AccountsService struct {
	expenses repo.ExpenseRepo
	trips    repo.TripRepo
	notifier ChangeNotifier
}

// NewAccountsService constructs an AccountsService. notifier may be nil.
func NewAccountsService(expenses repo.ExpenseRepo, trips repo.TripRepo, notifier ChangeNotifier) *AccountsService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &AccountsService{expenses: expenses, trips: trips, notifier: notifier}
}

// CreateExpense validates and records an expense.
func (s *AccountsService) CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	switch {
	case !e.Type.Valid():
		return domain.Expense{}, fmt.Errorf("%w: unknown expense type %q", domain.ErrValidation, e.Type)
	case e.Amount <= 0:
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	case e.Date.IsZero():
		return domain.Expense{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	e.Date = schedule.DayStart(e.Date)
	e.Amount = roundCents(e.Amount)

	created, err := s.expenses.Create(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.AccountsService.CreateExpense: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicExpenses)
	return created, nil
}

// ListExpenses returns expenses dated within [from, to], newest first. A zero
// bound leaves that side open. Always returns a non-nil slice.
func (s *AccountsService) ListExpenses(ctx context.Context, from, to time.Time) ([]domain.Expense, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", domain.ErrValidation)
	}
	list, err := s.expenses.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("service.AccountsService.ListExpenses: %w", err)
	}
	if list == nil {
		return []domain.Expense{}, nil
	}
	return list, nil
}

// DeleteExpense removes an expense.
func (s *AccountsService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.AccountsService.DeleteExpense: %w", err)
	}
	s.notifier.Changed(ctx, events.TopicExpenses)
	return nil
}

// Summary returns total income, total expenses, profit and profit margin.
// Income is the rent of every trip that was not cancelled. The margin is a
// percentage rounded to two decimals, and 0 when there is no income.
func (s *AccountsService) Summary(ctx context.Context) (domain.FinancialSummary, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("service.AccountsService.Summary: %w", err)
	}
	expenses, err := s.expenses.Total(ctx)
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("service.AccountsService.Summary: %w", err)
	}
	return summarize(trips, expenses), nil
}

func summarize(trips []domain.Trip, expenses float64) domain.FinancialSummary {
	var income float64
	for _, t := range trips {
		if t.Status == domain.TripCancelled {
			continue
		}
		income += t.RentAmount
	}
	income = roundCents(income)
	expenses = roundCents(expenses)

	sum := domain.FinancialSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Profit:        roundCents(income - expenses),
	}
	if income > 0 {
		sum.ProfitMargin = roundCents(sum.Profit / income * 100)
	}
	return sum
}
