package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseType classifies an expense entry.
type ExpenseType string

const (
	ExpenseFuel          ExpenseType = "fuel"
	ExpenseToll          ExpenseType = "toll"
	ExpenseDriverPayment ExpenseType = "driver_payment"
	ExpenseMaintenance   ExpenseType = "maintenance"
	ExpenseOther         ExpenseType = "other"
)

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseFuel, ExpenseToll, ExpenseDriverPayment, ExpenseMaintenance, ExpenseOther:
		return true
	}
	return false
}

// Expense is a single outgoing payment.
type Expense struct {
	ID          uuid.UUID
	Type        ExpenseType
	Amount      float64
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// FinancialSummary aggregates income from trips against recorded expenses.
// ProfitMargin is a percentage rounded to two decimals, zero when there is
// no income.
type FinancialSummary struct {
	TotalIncome   float64
	TotalExpenses float64
	Profit        float64
	ProfitMargin  float64
}

// Invoice is the metadata of a generated trip invoice. The PDF itself lives
// in blob storage under StorageKey.
type Invoice struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	InvoiceNumber string
	PDFURL        string
	StorageKey    string
	GeneratedBy   string
	GeneratedAt   time.Time
}
