package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/service"
)

func tripsWithRent(rents map[domain.TripStatus][]float64) []domain.Trip {
	var out []domain.Trip
	for status, list := range rents {
		for _, r := range list {
			out = append(out, domain.Trip{ID: uuid.New(), Status: status, RentAmount: r})
		}
	}
	return out
}

func TestAccountsService_Summary(t *testing.T) {
	trips := tripsWithRent(map[domain.TripStatus][]float64{
		domain.TripCompleted: {10000, 5000},
		domain.TripUpcoming:  {3000},
		domain.TripCancelled: {99999},
	})
	svc := service.NewAccountsService(
		&mockExpenseRepo{total: func(context.Context) (float64, error) { return 6000, nil }},
		&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return trips, nil }},
		nil,
	)

	got, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 18000.0, got.TotalIncome, "cancelled trips earn nothing")
	assert.Equal(t, 6000.0, got.TotalExpenses)
	assert.Equal(t, 12000.0, got.Profit)
	assert.Equal(t, 66.67, got.ProfitMargin)
}

func TestAccountsService_Summary_NoIncome(t *testing.T) {
	svc := service.NewAccountsService(
		&mockExpenseRepo{total: func(context.Context) (float64, error) { return 500, nil }},
		&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return nil, nil }},
		nil,
	)

	got, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, -500.0, got.Profit)
	assert.Zero(t, got.ProfitMargin)
}

func TestAccountsService_Summary_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := service.NewAccountsService(
		&mockExpenseRepo{total: func(context.Context) (float64, error) { return 0, boom }},
		&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return nil, nil }},
		nil,
	)

	_, err := svc.Summary(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestAccountsService_CreateExpense(t *testing.T) {
	notifier := &recordingNotifier{}
	var stored domain.Expense
	svc := service.NewAccountsService(&mockExpenseRepo{
		create: func(_ context.Context, e domain.Expense) (domain.Expense, error) {
			stored = e
			return e, nil
		},
	}, &mockTripRepo{}, notifier)

	_, err := svc.CreateExpense(context.Background(), domain.Expense{
		Type:        domain.ExpenseFuel,
		Amount:      2500.456,
		Description: " diesel ",
		Date:        june(3).Add(10 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, 2500.46, stored.Amount)
	assert.Equal(t, "diesel", stored.Description)
	assert.Equal(t, june(3), stored.Date)
	assert.Equal(t, []events.Topic{events.TopicExpenses}, notifier.topics)
}

func TestAccountsService_CreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Expense
	}{
		{"unknown type", domain.Expense{Type: "party", Amount: 1, Date: june(1)}},
		{"zero amount", domain.Expense{Type: domain.ExpenseToll, Date: june(1)}},
		{"missing date", domain.Expense{Type: domain.ExpenseToll, Amount: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewAccountsService(&mockExpenseRepo{}, &mockTripRepo{}, nil)

			_, err := svc.CreateExpense(context.Background(), tc.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAccountsService_ListExpenses(t *testing.T) {
	svc := service.NewAccountsService(&mockExpenseRepo{
		list: func(_ context.Context, from, to time.Time) ([]domain.Expense, error) {
			assert.Equal(t, june(1), from)
			assert.True(t, to.IsZero())
			return nil, nil
		},
	}, &mockTripRepo{}, nil)

	got, err := svc.ListExpenses(context.Background(), june(1), time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = svc.ListExpenses(context.Background(), june(5), june(1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
