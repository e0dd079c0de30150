package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pfm/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "pfm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Username:         "ada",
		Email:            email,
		PasswordHash:     "x",
		Salary:           core.NewMoney(6000, 0),
		BudgetPreference: core.BudgetMonthly,
	})
	require.NoError(t, err)
	return u
}

func categoryID(t *testing.T, repo *SQLiteRepository, name string) int64 {
	t.Helper()
	row, err := repo.queries.GetCategoryByName(context.Background(), name)
	require.NoError(t, err)
	return row.ID
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := seedUser(t, repo, "ada@example.com")
	assert.NotZero(t, u.ID)
	assert.Equal(t, core.NewMoney(6000, 0), u.Salary)

	byEmail, err := repo.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.CreateUser(ctx, core.User{Username: "dup", Email: "ada@example.com", PasswordHash: "x", BudgetPreference: core.BudgetMonthly})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = repo.GetUser(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	u.TelegramChatID = 42
	u.EmailNotification = true
	updated, err := repo.UpdateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.TelegramChatID)
	assert.True(t, updated.EmailNotification)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	all, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 5, "seeded categories")

	_, err = repo.CreateCategory(ctx, "emergency savings")
	assert.ErrorIs(t, err, core.ErrConflict, "names are unique regardless of case")

	c, err := repo.CreateCategory(ctx, "Pets")
	require.NoError(t, err)
	c.Name = "Pet Care"
	c, err = repo.UpdateCategory(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Pet Care", c.Name)

	require.NoError(t, repo.DeleteCategory(ctx, c.ID))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, c.ID), core.ErrNotFound)
}

func TestExpensesAndSums(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ada@example.com")
	other := seedUser(t, repo, "bob@example.com")
	emergency := categoryID(t, repo, "Emergency Savings")
	groceries := categoryID(t, repo, "Groceries")

	add := func(userID, cat int64, date core.Date, cents int64) core.Expense {
		e, err := repo.CreateExpense(ctx, core.Expense{UserID: userID, CategoryID: cat, Date: date, Amount: core.Money{Cents: cents}})
		require.NoError(t, err)
		return e
	}
	first := add(u.ID, emergency, core.NewDate(2025, 3, 1), 60000)
	add(u.ID, emergency, core.NewDate(2025, 3, 2), 40000)
	add(u.ID, groceries, core.NewDate(2025, 3, 2), 12345)
	add(u.ID, groceries, core.NewDate(2025, 2, 28), 100)
	add(other.ID, emergency, core.NewDate(2025, 3, 1), 99999)

	assert.Equal(t, "Emergency Savings", first.CategoryName)
	assert.Equal(t, "2025-03-01", first.Date.String())

	_, err := repo.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: emergency, Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 1}})
	assert.ErrorIs(t, err, core.ErrConflict, "one expense per user, date and category")

	sum, err := repo.SumForCategory(ctx, u.ID, "EMERGENCY SAVINGS")
	require.NoError(t, err)
	assert.Equal(t, core.NewMoney(1000, 0), sum)

	missing, err := repo.SumForCategory(ctx, u.ID, "No Such Category")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())

	march, err := repo.SumForPeriod(ctx, u.ID, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(112345), march.Cents)

	byCat, err := repo.SumByCategory(ctx, u.ID, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "Emergency Savings", byCat[0].Name)

	recent, err := repo.RecentExpenses(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2025-03-02", recent[0].Date.String())

	_, err = repo.GetExpense(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, core.ErrNotFound, "expenses are scoped to their owner")

	first.Amount = core.NewMoney(700, 0)
	updated, err := repo.UpdateExpense(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, core.NewMoney(700, 0), updated.Amount)

	require.NoError(t, repo.DeleteExpense(ctx, u.ID, first.ID))
	assert.ErrorIs(t, repo.DeleteExpense(ctx, u.ID, first.ID), core.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, groceries), core.ErrConflict, "category still referenced")
}

func TestLatestResponse(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ada@example.com")

	latest, err := repo.LatestResponse(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	debt := core.NewMoney(5000, 0)
	_, err = repo.CreateResponse(ctx, core.QuestionnaireResponse{UserID: u.ID, HasDebt: true, DebtAmount: &debt, SubmittedAt: base.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	second, err := repo.CreateResponse(ctx, core.QuestionnaireResponse{UserID: u.ID, HasDebt: false, SubmittedAt: base.Add(time.Second)})
	require.NoError(t, err)

	latest, err = repo.LatestResponse(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.False(t, latest.HasDebt)
	assert.Nil(t, latest.DebtAmount)

	list, err := repo.ListResponses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, debt, *list[1].DebtAmount)
}

func TestChildrenPlannedTotal(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ada@example.com")

	planned := core.NewMoney(10000, 0)
	_, err := repo.CreateChild(ctx, core.ChildrenContribution{UserID: u.ID, ChildName: "Sam", ParentName: "Ada", TotalContributionPlanned: &planned})
	require.NoError(t, err)
	_, err = repo.CreateChild(ctx, core.ChildrenContribution{UserID: u.ID, ChildName: "Max", ParentName: "Ada"})
	require.NoError(t, err)

	total, err := repo.PlannedContributionTotal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, planned, total)
}

func TestUserMilestonesUniquePerStep(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ada@example.com")

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := repo.CreateUserMilestone(ctx, core.UserMilestoneStatus{UserID: u.ID, Step: 1, IsCompleted: true, CompletedAt: &now})
	require.NoError(t, err)
	require.NotNil(t, s.CompletedAt)
	assert.True(t, now.Equal(*s.CompletedAt))

	_, err = repo.CreateUserMilestone(ctx, core.UserMilestoneStatus{UserID: u.ID, Step: 1})
	assert.ErrorIs(t, err, core.ErrConflict)

	s.IsCompleted = false
	s.CompletedAt = nil
	require.NoError(t, repo.UpdateUserMilestone(ctx, s))
	rows, err := repo.ListUserMilestones(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].CompletedAt)
}

func TestRecordBudgetAlertDedupes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ada@example.com")
	at := time.Now()

	fresh, err := repo.RecordBudgetAlert(ctx, u.ID, "2025-03", 75, at)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.RecordBudgetAlert(ctx, u.ID, "2025-03", 75, at)
	require.NoError(t, err)
	assert.False(t, fresh)

	fresh, err = repo.RecordBudgetAlert(ctx, u.ID, "2025-04", 75, at)
	require.NoError(t, err)
	assert.True(t, fresh)

	require.NoError(t, repo.ReleaseBudgetAlert(ctx, u.ID, "2025-03", 75))
	require.NoError(t, repo.ReleaseBudgetAlert(ctx, u.ID, "2025-03", 90))
	fresh, err = repo.RecordBudgetAlert(ctx, u.ID, "2025-03", 75, at)
	require.NoError(t, err)
	assert.True(t, fresh, "a released threshold can be recorded again")
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.InTx(ctx, func(s Store) error {
		if _, err := s.CreateCategory(ctx, "Rolled Back"); err != nil {
			return err
		}
		return core.ErrConflict
	})
	assert.ErrorIs(t, err, core.ErrConflict)

	all, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range all {
		assert.NotEqual(t, "Rolled Back", c.Name)
	}
}

func TestListUserIDsPages(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a := seedUser(t, repo, "a@example.com")
	b := seedUser(t, repo, "b@example.com")
	c := seedUser(t, repo, "c@example.com")

	page, err := repo.ListUserIDs(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, page)

	page, err = repo.ListUserIDs(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID}, page)

	page, err = repo.ListUserIDs(ctx, c.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}
