package storage

import "context"

const expenseColumns = `e.id, e.user_id, e.category_id, c.name, e.expense_date, e.amount_cents, e.created_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CategoryID,
		&i.CategoryName,
		&i.ExpenseDate,
		&i.AmountCents,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) listExpenses(ctx context.Context, query string, args ...interface{}) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		i, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (user_id, category_id, expense_date, amount_cents, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateExpenseParams struct {
	UserID      int64
	CategoryID  int64
	ExpenseDate string
	AmountCents int64
	CreatedAt   string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID,
		arg.CategoryID,
		arg.ExpenseDate,
		arg.AmountCents,
		arg.CreatedAt,
	).Scan(&id)
	return id, err
}

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseColumns + `
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.id = ? AND e.user_id = ?`

func (q *Queries) GetExpense(ctx context.Context, id, userID int64) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id, userID))
}

const listExpensesByUser = `-- name: ListExpensesByUser :many
SELECT ` + expenseColumns + `
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ?
ORDER BY e.expense_date DESC, e.id DESC`

func (q *Queries) ListExpensesByUser(ctx context.Context, userID int64) ([]Expense, error) {
	return q.listExpenses(ctx, listExpensesByUser, userID)
}

const listExpensesInRange = `-- name: ListExpensesInRange :many
SELECT ` + expenseColumns + `
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ? AND e.expense_date BETWEEN ? AND ?
ORDER BY e.expense_date ASC, e.id ASC`

func (q *Queries) ListExpensesInRange(ctx context.Context, userID int64, start, end string) ([]Expense, error) {
	return q.listExpenses(ctx, listExpensesInRange, userID, start, end)
}

const listRecentExpenses = `-- name: ListRecentExpenses :many
SELECT ` + expenseColumns + `
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ?
ORDER BY e.expense_date DESC, e.id DESC
LIMIT ?`

func (q *Queries) ListRecentExpenses(ctx context.Context, userID int64, limit int64) ([]Expense, error) {
	return q.listExpenses(ctx, listRecentExpenses, userID, limit)
}

const updateExpense = `-- name: UpdateExpense :execrows
UPDATE expenses SET category_id = ?, expense_date = ?, amount_cents = ?
WHERE id = ? AND user_id = ?`

type UpdateExpenseParams struct {
	CategoryID  int64
	ExpenseDate string
	AmountCents int64
	ID          int64
	UserID      int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpense,
		arg.CategoryID,
		arg.ExpenseDate,
		arg.AmountCents,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumExpensesForCategory = `-- name: SumExpensesForCategory :one
SELECT CAST(COALESCE(SUM(e.amount_cents), 0) AS INTEGER)
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ? AND c.name = ? COLLATE NOCASE`

func (q *Queries) SumExpensesForCategory(ctx context.Context, userID int64, category string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumExpensesForCategory, userID, category).Scan(&total)
	return total, err
}

const sumExpensesForPeriod = `-- name: SumExpensesForPeriod :one
SELECT CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER)
FROM expenses
WHERE user_id = ? AND expense_date BETWEEN ? AND ?`

func (q *Queries) SumExpensesForPeriod(ctx context.Context, userID int64, start, end string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumExpensesForPeriod, userID, start, end).Scan(&total)
	return total, err
}

const sumExpensesByCategory = `-- name: SumExpensesByCategory :many
SELECT c.name, CAST(SUM(e.amount_cents) AS INTEGER) AS total
FROM expenses e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ? AND e.expense_date BETWEEN ? AND ?
GROUP BY c.id
ORDER BY total DESC, c.name`

func (q *Queries) SumExpensesByCategory(ctx context.Context, userID int64, start, end string) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, sumExpensesByCategory, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var i CategorySum
		if err := rows.Scan(&i.Name, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
