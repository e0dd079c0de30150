package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pfm/internal/core"
	"pfm/internal/notify"
	"pfm/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, to notify.Recipient, msg notify.Message) error {
	args := m.Called(ctx, to, msg)
	return args.Error(0)
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "pfm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo.WithClock(fixedClock)
}

func seedUser(t *testing.T, store storage.Store, salary core.Money, optIn bool) core.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), core.User{
		Username:          "ada",
		Email:             "ada@example.com",
		PasswordHash:      "x",
		Salary:            salary,
		BudgetPreference:  core.BudgetMonthly,
		EmailNotification: optIn,
	})
	require.NoError(t, err)
	return u
}

func categoryNamed(t *testing.T, store storage.Store, name string) int64 {
	t.Helper()
	all, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}
	t.Fatalf("category %q not seeded", name)
	return 0
}

func addExpense(t *testing.T, store storage.Store, userID int64, category string, date core.Date, amount core.Money) core.Expense {
	t.Helper()
	e, err := store.CreateExpense(context.Background(), core.Expense{
		UserID:     userID,
		CategoryID: categoryNamed(t, store, category),
		Date:       date,
		Amount:     amount,
	})
	require.NoError(t, err)
	return e
}

func moneyPtr(m core.Money) *core.Money { return &m }
