package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"pfm/internal/auth"
	"pfm/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *MilestoneService, *auth.Tokens) {
	t.Helper()
	repo := newRepo(t)
	tokens := auth.NewTokens("test-secret", time.Hour)
	ms := NewMilestoneService(repo, nil, nil).WithClock(fixedClock)
	svc := NewUserService(repo, tokens, ms)
	svc.now = fixedClock
	return svc, ms, tokens
}

func TestUserService_RegisterLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newUserService(t)

	sess, err := svc.Register(ctx, RegisterInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correct horse",
		Salary:   core.NewMoney(4000, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, core.BudgetMonthly, sess.User.BudgetPreference)
	assert.NotEqual(t, "correct horse", sess.User.PasswordHash)

	id, err := tokens.Verify(sess.Access)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)

	_, err = svc.Register(ctx, RegisterInput{Username: "ada2", Email: "ADA@example.com", Password: "password1"})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "not-an-email", Password: "password1"})
	assert.ErrorIs(t, err, core.ErrInvalidEmail)

	logged, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	svc, ms, _ := newUserService(t)
	sess, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "password1", Salary: core.NewMoney(1000, 0)})
	require.NoError(t, err)
	id := sess.User.ID

	name := "other"
	_, err = svc.Update(ctx, id+1, id, UserPatch{Username: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.store.CreateResponse(ctx, core.QuestionnaireResponse{UserID: id})
	require.NoError(t, err)
	addExpense(t, svc.store, id, "Full Emergency Savings", core.NewDate(2025, 3, 1), core.NewMoney(6000, 0))
	require.NoError(t, ms.RecalculateAndNotify(ctx, id))
	st, err := ms.Statuses(ctx, id)
	require.NoError(t, err)
	require.True(t, stepCompleted(st, 3), "6000 covers six months of 1000")

	salary := core.NewMoney(2000, 0)
	chat := int64(77)
	updated, err := svc.Update(ctx, id, id, UserPatch{Salary: &salary, TelegramChatID: &chat})
	require.NoError(t, err)
	assert.Equal(t, salary, updated.Salary)
	assert.Equal(t, chat, updated.TelegramChatID)

	st, err = ms.Statuses(ctx, id)
	require.NoError(t, err)
	assert.False(t, stepCompleted(st, 3), "a salary raise re-runs the sync")

	neg := core.Money{Cents: -1}
	_, err = svc.Update(ctx, id, id, UserPatch{Salary: &neg})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func stepCompleted(st []core.UserMilestoneStatus, step int) bool {
	for _, s := range st {
		if s.Step == step {
			return s.IsCompleted
		}
	}
	return false
}

func TestUserService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)
	sess, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "password1", Salary: core.NewMoney(4000, 0), TotalBalance: core.NewMoney(12000, 0)})
	require.NoError(t, err)
	id := sess.User.ID

	addExpense(t, svc.store, id, "Rent", core.NewDate(2025, 3, 1), core.NewMoney(800, 0))
	addExpense(t, svc.store, id, "Groceries", core.NewDate(2025, 3, 31), core.NewMoney(200, 0))
	addExpense(t, svc.store, id, "Groceries", core.NewDate(2025, 2, 27), core.NewMoney(999, 0))

	d, err := svc.Dashboard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.NewMoney(12000, 0), d.TotalBalance)
	assert.Equal(t, core.NewMoney(4000, 0), d.MonthlyIncome)
	assert.Equal(t, core.NewMoney(1000, 0), d.MonthlyExpenses, "the whole calendar month counts")
	assert.Equal(t, 75.0, d.SavingsRate)
	assert.Len(t, d.ByCategory, 2)
	assert.Len(t, d.RecentExpenses, 3)
	assert.True(t, d.MilestoneStatus.NoData)
}

func TestExpenseService(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	u := seedUser(t, repo, core.NewMoney(1000, 0), false)
	ms := NewMilestoneService(repo, nil, nil)
	bs := NewBudgetService(repo, nil, nil).WithClock(fixedClock, nil)
	svc := NewExpenseService(repo, bs, ms)

	rent := categoryNamed(t, repo, "Rent")

	t.Run("create without alert", func(t *testing.T) {
		e, alert, err := svc.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: rent, Date: core.NewDate(2025, 3, 1), Amount: core.NewMoney(100, 0)})
		require.NoError(t, err)
		assert.Nil(t, alert)
		assert.Equal(t, "Rent", e.CategoryName)
	})

	t.Run("create crossing threshold", func(t *testing.T) {
		_, alert, err := svc.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: rent, Date: core.NewDate(2025, 3, 2), Amount: core.NewMoney(700, 0)})
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, 80, alert.Percentage)
		assert.True(t, alert.NewlyCrossed)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, _, err := svc.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: 9999, Date: core.NewDate(2025, 3, 3), Amount: core.NewMoney(1, 0)})
		assert.ErrorIs(t, err, core.ErrMissingCategory)
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, _, err := svc.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: rent, Date: core.NewDate(2025, 3, 3)})
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("duplicate day and category", func(t *testing.T) {
		_, _, err := svc.CreateExpense(ctx, core.Expense{UserID: u.ID, CategoryID: rent, Date: core.NewDate(2025, 3, 1), Amount: core.NewMoney(5, 0)})
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("list range", func(t *testing.T) {
		start, end := core.NewDate(2025, 3, 2), core.NewDate(2025, 3, 31)
		list, err := svc.ListExpenses(ctx, u.ID, &start, &end)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = svc.ListExpenses(ctx, u.ID, &end, &start)
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportMonth(ctx, &buf, u.ID, 2025, 3))
		assert.NotZero(t, buf.Len())

		assert.ErrorIs(t, svc.ExportMonth(ctx, &buf, u.ID, 2025, 13), core.ErrInvalidMonth)
	})

	t.Run("delete scoped to owner", func(t *testing.T) {
		list, err := svc.ListExpenses(ctx, u.ID, nil, nil)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.ErrorIs(t, svc.DeleteExpense(ctx, u.ID+1, list[0].ID), core.ErrNotFound)
		assert.NoError(t, svc.DeleteExpense(ctx, u.ID, list[0].ID))
	})
}

func TestQuestionnaireService_CreateTriggersSync(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	u := seedUser(t, repo, core.NewMoney(1000, 0), false)
	ms := NewMilestoneService(repo, nil, nil).WithClock(fixedClock)
	svc := NewQuestionnaireService(repo, ms)

	created, err := svc.Create(ctx, core.QuestionnaireResponse{UserID: u.ID, HasDebt: true, DebtAmount: moneyPtr(core.NewMoney(10, 0))})
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(created.SubmittedAt))

	st, err := ms.Statuses(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, st, 7)
	assert.False(t, stepCompleted(st, 2))

	created.HasDebt = false
	created.DebtAmount = nil
	_, err = svc.Update(ctx, created)
	require.NoError(t, err)
	st, err = ms.Statuses(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stepCompleted(st, 2))

	_, err = svc.Create(ctx, core.QuestionnaireResponse{UserID: u.ID, ChildrenCount: new(int)})
	require.NoError(t, err)
	bad := -1
	_, err = svc.Create(ctx, core.QuestionnaireResponse{UserID: u.ID, ChildrenCount: &bad})
	assert.ErrorIs(t, err, core.ErrValidation)
}
