package storage

import (
	"context"
	"database/sql"
)

const childColumns = `id, user_id, child_name, parent_name, total_contribution_planned_cents,
    monthly_contribution_cents, created_at`

func scanChild(row interface{ Scan(...interface{}) error }) (ChildrenContribution, error) {
	var i ChildrenContribution
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ChildName,
		&i.ParentName,
		&i.TotalContributionPlannedCents,
		&i.MonthlyContributionCents,
		&i.CreatedAt,
	)
	return i, err
}

type ChildParams struct {
	ChildName                     string
	ParentName                    string
	TotalContributionPlannedCents sql.NullInt64
	MonthlyContributionCents      sql.NullInt64
}

const createChild = `-- name: CreateChild :one
INSERT INTO children_contributions (
    user_id, child_name, parent_name, total_contribution_planned_cents,
    monthly_contribution_cents, created_at
) VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + childColumns

func (q *Queries) CreateChild(ctx context.Context, userID int64, arg ChildParams, createdAt string) (ChildrenContribution, error) {
	row := q.db.QueryRowContext(ctx, createChild,
		userID,
		arg.ChildName,
		arg.ParentName,
		arg.TotalContributionPlannedCents,
		arg.MonthlyContributionCents,
		createdAt,
	)
	return scanChild(row)
}

const getChild = `-- name: GetChild :one
SELECT ` + childColumns + ` FROM children_contributions WHERE id = ? AND user_id = ?`

func (q *Queries) GetChild(ctx context.Context, id, userID int64) (ChildrenContribution, error) {
	return scanChild(q.db.QueryRowContext(ctx, getChild, id, userID))
}

const listChildren = `-- name: ListChildren :many
SELECT ` + childColumns + ` FROM children_contributions WHERE user_id = ? ORDER BY id`

func (q *Queries) ListChildren(ctx context.Context, userID int64) ([]ChildrenContribution, error) {
	rows, err := q.db.QueryContext(ctx, listChildren, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChildrenContribution
	for rows.Next() {
		i, err := scanChild(rows)
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

const updateChild = `-- name: UpdateChild :one
UPDATE children_contributions SET
    child_name = ?,
    parent_name = ?,
    total_contribution_planned_cents = ?,
    monthly_contribution_cents = ?
WHERE id = ? AND user_id = ?
RETURNING ` + childColumns

func (q *Queries) UpdateChild(ctx context.Context, id, userID int64, arg ChildParams) (ChildrenContribution, error) {
	row := q.db.QueryRowContext(ctx, updateChild,
		arg.ChildName,
		arg.ParentName,
		arg.TotalContributionPlannedCents,
		arg.MonthlyContributionCents,
		id,
		userID,
	)
	return scanChild(row)
}

const deleteChild = `-- name: DeleteChild :execrows
DELETE FROM children_contributions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteChild(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteChild, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumPlannedContributions = `-- name: SumPlannedContributions :one
SELECT CAST(COALESCE(SUM(total_contribution_planned_cents), 0) AS INTEGER)
FROM children_contributions WHERE user_id = ?`

func (q *Queries) SumPlannedContributions(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPlannedContributions, userID).Scan(&total)
	return total, err
}
