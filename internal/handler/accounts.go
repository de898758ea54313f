package handler

import (
	"net/http"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/middleware"
)

// listExpenses handles GET /expenses?from=&to=. Either bound may be omitted.
func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	expenses, err := s.accounts.ListExpenses(r.Context(), from, to)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(expenses, expenseToResponse))
}

// createExpense handles POST /expenses.
func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}
	created, err := s.accounts.CreateExpense(r.Context(), req.toDomain())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, expenseToResponse(created))
}

// deleteExpense handles DELETE /expenses/{id}.
func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.accounts.DeleteExpense(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getSummary handles GET /accounts/summary.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.accounts.Summary(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

func summaryToResponse(s domain.FinancialSummary) FinancialSummary {
	return FinancialSummary{
		TotalIncome:   s.TotalIncome,
		TotalExpenses: s.TotalExpenses,
		Profit:        s.Profit,
		ProfitMargin:  s.ProfitMargin,
	}
}

// generateInvoice handles POST /trips/{id}/invoice.
func (s *Server) generateInvoice(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	inv, err := s.invoices.Generate(r.Context(), tripID, actor)
	if err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, invoiceToResponse(inv))
}

// listInvoices handles GET /invoices with optional ?page= / ?limit= paging.
func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.invoices.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	page, err := paginate(w, r, invoices)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(page, invoiceToResponse))
}
