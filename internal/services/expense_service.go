package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pfm/internal/budget"
	"pfm/internal/core"
	"pfm/internal/export"
	"pfm/internal/storage"
)

// ExpenseService orchestrates expense writes and the side effects that
// follow them: the budget check and report cache invalidation.
type ExpenseService struct {
	store      storage.Store
	budget     *BudgetService
	milestones *MilestoneService
}

func NewExpenseService(store storage.Store, budget *BudgetService, ms *MilestoneService) *ExpenseService {
	return &ExpenseService{
		store:      store,
		budget:     budget,
		milestones: ms,
	}
}

// CreateExpense saves an expense and runs the budget check. A failing check
// is logged and the expense is still returned.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, *budget.Summary, error) {
	if err := s.validate(ctx, e); err != nil {
		return core.Expense{}, nil, err
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, nil, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate(ctx, e.UserID)

	var alert *budget.Summary
	if s.budget != nil {
		alert, err = s.budget.CheckBudgetAndAlert(ctx, e.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "Budget check failed",
				"user_id", e.UserID, "expense_id", created.ID, "error", err)
			// Don't fail the request - expense is saved
			alert = nil
		}
	}
	return created, alert, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

// ListExpenses returns every expense of the user, or only those in
// [start, end] when both bounds are set.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64, start, end *core.Date) ([]core.Expense, error) {
	if start != nil && end != nil {
		if end.Before(start.Time) {
			return nil, core.ErrInvalidDate
		}
		return s.store.ListExpensesInRange(ctx, userID, *start, *end)
	}
	return s.store.ListExpenses(ctx, userID)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := s.validate(ctx, e); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.invalidate(ctx, e.UserID)
	return updated, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// ExportMonth writes the user's expenses of one calendar month as XLSX.
func (s *ExpenseService) ExportMonth(ctx context.Context, w io.Writer, userID int64, year, month int) error {
	if month < 1 || month > 12 {
		return core.ErrInvalidMonth
	}
	start := core.NewDate(year, month, 1)
	end := core.Date{Time: start.AddDate(0, 1, -1)}

	expenses, err := s.store.ListExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return err
	}
	byCategory, err := s.store.SumByCategory(ctx, userID, start, end)
	if err != nil {
		return err
	}
	return export.Expenses(w, expenses, byCategory)
}

func (s *ExpenseService) validate(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, e.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrMissingCategory
		}
		return err
	}
	return nil
}

func (s *ExpenseService) invalidate(ctx context.Context, userID int64) {
	if s.milestones != nil {
		s.milestones.Invalidate(ctx, userID)
	}
}
