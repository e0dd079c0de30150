package storage

import (
	"context"
	"time"

	"pfm/internal/core"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateUser(ctx context.Context, u core.User) (core.User, error)
	// ListUserIDs pages through user ids in ascending order.
	ListUserIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// CategoryStore persists the shared category list.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name string) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// ExpenseStore persists expenses and answers aggregate queries over them.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	ListExpensesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Expense, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error

	SumForCategory(ctx context.Context, userID int64, category string) (core.Money, error)
	SumForPeriod(ctx context.Context, userID int64, start, end core.Date) (core.Money, error)
	SumByCategory(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryAmount, error)
}

// QuestionnaireStore persists questionnaire responses.
type QuestionnaireStore interface {
	CreateResponse(ctx context.Context, r core.QuestionnaireResponse) (core.QuestionnaireResponse, error)
	GetResponse(ctx context.Context, userID, id int64) (core.QuestionnaireResponse, error)
	ListResponses(ctx context.Context, userID int64) ([]core.QuestionnaireResponse, error)
	UpdateResponse(ctx context.Context, r core.QuestionnaireResponse) (core.QuestionnaireResponse, error)
	// LatestResponse returns nil without error when the user never answered.
	LatestResponse(ctx context.Context, userID int64) (*core.QuestionnaireResponse, error)
}

// ChildrenStore persists planned education contributions.
type ChildrenStore interface {
	CreateChild(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error)
	GetChild(ctx context.Context, userID, id int64) (core.ChildrenContribution, error)
	ListChildren(ctx context.Context, userID int64) ([]core.ChildrenContribution, error)
	UpdateChild(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error)
	DeleteChild(ctx context.Context, userID, id int64) error
	PlannedContributionTotal(ctx context.Context, userID int64) (core.Money, error)
}

// MilestoneStore persists per-user milestone completion.
type MilestoneStore interface {
	ListUserMilestones(ctx context.Context, userID int64) ([]core.UserMilestoneStatus, error)
	CreateUserMilestone(ctx context.Context, s core.UserMilestoneStatus) (core.UserMilestoneStatus, error)
	UpdateUserMilestone(ctx context.Context, s core.UserMilestoneStatus) error
}

// AlertStore records which budget thresholds were already notified.
type AlertStore interface {
	// RecordBudgetAlert returns true when the (user, period, threshold)
	// record did not exist before this call.
	RecordBudgetAlert(ctx context.Context, userID int64, period string, threshold int, at time.Time) (bool, error)
	// ReleaseBudgetAlert forgets a recorded threshold so the next check
	// alerts again. Releasing an unknown record is not an error.
	ReleaseBudgetAlert(ctx context.Context, userID int64, period string, threshold int) error
}

// Store is the full persistence surface. InTx runs fn against a store bound
// to a single write transaction; fn's error rolls it back.
type Store interface {
	UserStore
	CategoryStore
	ExpenseStore
	QuestionnaireStore
	ChildrenStore
	MilestoneStore
	AlertStore

	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}
