// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"

	"pfm/internal/core"
	"pfm/internal/milestones"
	"pfm/internal/storage"
)

// Aggregator answers the expense totals the evaluator and the budget
// monitor depend on.
type Aggregator struct {
	expenses storage.ExpenseStore
}

func NewAggregator(expenses storage.ExpenseStore) *Aggregator {
	return &Aggregator{expenses: expenses}
}

// SumForCategory totals a user's expenses in the named category. The name
// matches case-insensitively and an unknown category sums to zero.
func (a *Aggregator) SumForCategory(ctx context.Context, userID int64, category string) (core.Money, error) {
	return a.expenses.SumForCategory(ctx, userID, category)
}

// SumForPeriod totals a user's expenses dated within [start, end].
func (a *Aggregator) SumForPeriod(ctx context.Context, userID int64, start, end core.Date) (core.Money, error) {
	if end.Before(start.Time) {
		return core.Money{}, core.ErrInvalidDate
	}
	return a.expenses.SumForPeriod(ctx, userID, start, end)
}

// CategorySums returns the total of every category the evaluator reads.
func (a *Aggregator) CategorySums(ctx context.Context, userID int64) (map[string]core.Money, error) {
	return categorySums(ctx, a.expenses, userID)
}

func categorySums(ctx context.Context, s storage.ExpenseStore, userID int64) (map[string]core.Money, error) {
	sums := make(map[string]core.Money, len(milestones.Categories))
	for _, name := range milestones.Categories {
		m, err := s.SumForCategory(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("sum %q: %w", name, err)
		}
		sums[name] = m
	}
	return sums, nil
}
