package storage

import (
	"context"
	"database/sql"
)

const userColumns = `id, username, email, password_hash, salary_cents, total_balance_cents,
    budget_preference, email_notification, telegram_chat_id, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.SalaryCents,
		&i.TotalBalanceCents,
		&i.BudgetPreference,
		&i.EmailNotification,
		&i.TelegramChatID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (
    username, email, password_hash, salary_cents, total_balance_cents,
    budget_preference, email_notification, telegram_chat_id, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username          string
	Email             string
	PasswordHash      string
	SalaryCents       int64
	TotalBalanceCents int64
	BudgetPreference  string
	EmailNotification bool
	TelegramChatID    sql.NullInt64
	CreatedAt         string
	UpdatedAt         string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.SalaryCents,
		arg.TotalBalanceCents,
		arg.BudgetPreference,
		arg.EmailNotification,
		arg.TelegramChatID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanUser(row)
}

const getUser = `-- name: GetUser :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUser = `-- name: UpdateUser :one
UPDATE users SET
    username = ?,
    email = ?,
    salary_cents = ?,
    total_balance_cents = ?,
    budget_preference = ?,
    email_notification = ?,
    telegram_chat_id = ?,
    updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

type UpdateUserParams struct {
	Username          string
	Email             string
	SalaryCents       int64
	TotalBalanceCents int64
	BudgetPreference  string
	EmailNotification bool
	TelegramChatID    sql.NullInt64
	UpdatedAt         string
	ID                int64
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUser,
		arg.Username,
		arg.Email,
		arg.SalaryCents,
		arg.TotalBalanceCents,
		arg.BudgetPreference,
		arg.EmailNotification,
		arg.TelegramChatID,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanUser(row)
}

const listUserIDsAfter = `-- name: ListUserIDsAfter :many
SELECT id FROM users WHERE id > ? ORDER BY id LIMIT ?`

func (q *Queries) ListUserIDsAfter(ctx context.Context, afterID int64, limit int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDsAfter, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
