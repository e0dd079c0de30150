package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"pfm/internal/budget"
	"pfm/internal/core"
	"pfm/internal/export"
	"pfm/internal/log"
)

// expenseCreated is the create response: the saved expense plus the budget
// alert it triggered, if any.
type expenseCreated struct {
	core.Expense
	BudgetAlert *budget.Summary `json:"budget_alert"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, end, err := ParseDateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if (start == nil) != (end == nil) {
		s.writeError(w, r, newBadRequest("start and end must be given together"))
		return
	}
	expenses, err := s.deps.Expenses.ListExpenses(r.Context(), userID, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	NewResponse().JSON(expenses).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var e core.Expense
	if err := DecodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = 0
	e.UserID = userID

	created, alert, err := s.deps.Expenses.CreateExpense(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldUserID, userID,
		"expense_id", created.ID,
		"amount", created.Amount.String(),
		"budget_alert", alert != nil)
	NewResponse().Status(http.StatusCreated).JSON(expenseCreated{Expense: created, BudgetAlert: alert}).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Expenses.GetExpense(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var e core.Expense
	if err := DecodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = id
	e.UserID = userID

	updated, err := s.deps.Expenses.UpdateExpense(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(updated).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Expenses.DeleteExpense(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportExpenses streams one month of expenses as an XLSX workbook.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Buffer so a late failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := s.deps.Expenses.ExportMonth(r.Context(), &buf, userID, params.Year, params.Month); err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("expenses-%04d-%02d.xlsx", params.Year, params.Month)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	s.logger.InfoContext(r.Context(), "Expenses exported",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpExport,
		"year", params.Year,
		"month", params.Month)
}
