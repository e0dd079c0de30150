package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pfm/internal/budget"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/notify"
	"pfm/internal/storage"
)

// BudgetService checks month-to-date spending against the user's salary and
// sends at most one alert per threshold per month. A threshold whose alert
// could not be delivered is alerted again on the next check.
type BudgetService struct {
	store    storage.Store
	notifier notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	loc      *time.Location
}

func NewBudgetService(store storage.Store, notifier notify.Notifier, m *metrics.Metrics) *BudgetService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &BudgetService{
		store:    store,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
		loc:      time.UTC,
	}
}

// WithClock overrides the time source and the calendar used for "today".
func (s *BudgetService) WithClock(now func() time.Time, loc *time.Location) *BudgetService {
	s.now = now
	if loc != nil {
		s.loc = loc
	}
	return s
}

// CheckBudgetAndAlert returns nil when the budget is not positive or no
// threshold has been crossed. Otherwise it returns the summary on every call
// and notifies only when a threshold is crossed for the first time this
// month.
func (s *BudgetService) CheckBudgetAndAlert(ctx context.Context, userID int64) (*budget.Summary, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("budget check: %w", err)
	}

	now := s.now()
	today := budget.Today(now, s.loc)
	start, end := budget.MonthToDate(today)
	spent, err := s.store.SumForPeriod(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("budget check for user %d: %w", userID, err)
	}

	summary, ok := budget.Check(user.Salary, spent, today)
	if !ok {
		return nil, nil
	}

	var fresh []budget.Level
	for _, level := range budget.Crossed(summary.AlertLevel) {
		inserted, err := s.store.RecordBudgetAlert(ctx, userID, summary.Period, int(level), now)
		if err != nil {
			return nil, fmt.Errorf("record budget alert for user %d: %w", userID, err)
		}
		if inserted {
			fresh = append(fresh, level)
		}
	}
	summary.NewlyCrossed = len(fresh) > 0
	s.metrics.BudgetAlert(int(summary.AlertLevel), summary.NewlyCrossed)

	log.Default().LogBudgetAlert(ctx, userID,
		log.NewFields().WithBudget(summary.TotalSpent.String(), summary.Budget.String(),
			summary.Percentage, int(summary.AlertLevel), summary.Period),
		summary.NewlyCrossed)

	if !summary.NewlyCrossed {
		return &summary, nil
	}
	to := notify.RecipientFor(user)
	if !to.Reachable() {
		s.release(ctx, userID, summary.Period, fresh)
		return &summary, nil
	}
	// Thresholds stay recorded only once the alert is out.
	period := summary.Period
	notify.SendThen(ctx, s.notifier, s.metrics, to, notify.BudgetAlert(user.Username, summary), func(err error) {
		if err != nil {
			s.release(context.WithoutCancel(ctx), userID, period, fresh)
		}
	})
	return &summary, nil
}

func (s *BudgetService) release(ctx context.Context, userID int64, period string, levels []budget.Level) {
	for _, level := range levels {
		if err := s.store.ReleaseBudgetAlert(ctx, userID, period, int(level)); err != nil {
			slog.ErrorContext(ctx, "Failed to release budget alert",
				"user_id", userID, "period", period, "threshold", int(level), "error", err)
		}
	}
}
