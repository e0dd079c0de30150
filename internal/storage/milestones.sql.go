package storage

import (
	"context"
	"database/sql"
)

const listUserMilestones = `-- name: ListUserMilestones :many
SELECT id, user_id, step, is_completed, completed_at
FROM user_milestones WHERE user_id = ? ORDER BY step`

func (q *Queries) ListUserMilestones(ctx context.Context, userID int64) ([]UserMilestone, error) {
	rows, err := q.db.QueryContext(ctx, listUserMilestones, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserMilestone
	for rows.Next() {
		var i UserMilestone
		if err := rows.Scan(&i.ID, &i.UserID, &i.Step, &i.IsCompleted, &i.CompletedAt); err != nil {
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

const createUserMilestone = `-- name: CreateUserMilestone :one
INSERT INTO user_milestones (user_id, step, is_completed, completed_at)
VALUES (?, ?, ?, ?)
RETURNING id, user_id, step, is_completed, completed_at`

func (q *Queries) CreateUserMilestone(ctx context.Context, userID, step int64, completed bool, completedAt sql.NullString) (UserMilestone, error) {
	var i UserMilestone
	err := q.db.QueryRowContext(ctx, createUserMilestone, userID, step, completed, completedAt).
		Scan(&i.ID, &i.UserID, &i.Step, &i.IsCompleted, &i.CompletedAt)
	return i, err
}

const updateUserMilestone = `-- name: UpdateUserMilestone :execrows
UPDATE user_milestones SET is_completed = ?, completed_at = ? WHERE id = ?`

func (q *Queries) UpdateUserMilestone(ctx context.Context, id int64, completed bool, completedAt sql.NullString) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserMilestone, completed, completedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertBudgetAlert = `-- name: InsertBudgetAlert :execrows
INSERT INTO budget_alerts (user_id, period, threshold, sent_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, period, threshold) DO NOTHING`

func (q *Queries) InsertBudgetAlert(ctx context.Context, userID int64, period string, threshold int64, sentAt string) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertBudgetAlert, userID, period, threshold, sentAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBudgetAlert = `-- name: DeleteBudgetAlert :exec
DELETE FROM budget_alerts
WHERE user_id = ? AND period = ? AND threshold = ?`

func (q *Queries) DeleteBudgetAlert(ctx context.Context, userID int64, period string, threshold int64) error {
	_, err := q.db.ExecContext(ctx, deleteBudgetAlert, userID, period, threshold)
	return err
}
