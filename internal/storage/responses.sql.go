package storage

import (
	"context"
	"database/sql"
)

const responseColumns = `id, user_id, salary_confirmed, emergency_savings, emergency_savings_amount_cents,
    has_debt, debt_amount_cents, retirement_investing, retirement_savings_amount_cents,
    has_children, children_count, bought_home, pay_off_home, mortgage_remaining_cents, submitted_at`

func scanResponse(row interface{ Scan(...interface{}) error }) (QuestionnaireResponse, error) {
	var i QuestionnaireResponse
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SalaryConfirmed,
		&i.EmergencySavings,
		&i.EmergencySavingsAmountCents,
		&i.HasDebt,
		&i.DebtAmountCents,
		&i.RetirementInvesting,
		&i.RetirementSavingsAmountCents,
		&i.HasChildren,
		&i.ChildrenCount,
		&i.BoughtHome,
		&i.PayOffHome,
		&i.MortgageRemainingCents,
		&i.SubmittedAt,
	)
	return i, err
}

type ResponseParams struct {
	SalaryConfirmed              bool
	EmergencySavings             bool
	EmergencySavingsAmountCents  sql.NullInt64
	HasDebt                      bool
	DebtAmountCents              sql.NullInt64
	RetirementInvesting          bool
	RetirementSavingsAmountCents sql.NullInt64
	HasChildren                  bool
	ChildrenCount                sql.NullInt64
	BoughtHome                   bool
	PayOffHome                   bool
	MortgageRemainingCents       sql.NullInt64
}

const createResponse = `-- name: CreateResponse :one
INSERT INTO questionnaire_responses (
    user_id, salary_confirmed, emergency_savings, emergency_savings_amount_cents,
    has_debt, debt_amount_cents, retirement_investing, retirement_savings_amount_cents,
    has_children, children_count, bought_home, pay_off_home, mortgage_remaining_cents, submitted_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + responseColumns

func (q *Queries) CreateResponse(ctx context.Context, userID int64, arg ResponseParams, submittedAt string) (QuestionnaireResponse, error) {
	row := q.db.QueryRowContext(ctx, createResponse,
		userID,
		arg.SalaryConfirmed,
		arg.EmergencySavings,
		arg.EmergencySavingsAmountCents,
		arg.HasDebt,
		arg.DebtAmountCents,
		arg.RetirementInvesting,
		arg.RetirementSavingsAmountCents,
		arg.HasChildren,
		arg.ChildrenCount,
		arg.BoughtHome,
		arg.PayOffHome,
		arg.MortgageRemainingCents,
		submittedAt,
	)
	return scanResponse(row)
}

const getResponse = `-- name: GetResponse :one
SELECT ` + responseColumns + ` FROM questionnaire_responses WHERE id = ? AND user_id = ?`

func (q *Queries) GetResponse(ctx context.Context, id, userID int64) (QuestionnaireResponse, error) {
	return scanResponse(q.db.QueryRowContext(ctx, getResponse, id, userID))
}

const latestResponse = `-- name: LatestResponse :one
SELECT ` + responseColumns + ` FROM questionnaire_responses
WHERE user_id = ?
ORDER BY submitted_at DESC, id DESC
LIMIT 1`

func (q *Queries) LatestResponse(ctx context.Context, userID int64) (QuestionnaireResponse, error) {
	return scanResponse(q.db.QueryRowContext(ctx, latestResponse, userID))
}

const listResponses = `-- name: ListResponses :many
SELECT ` + responseColumns + ` FROM questionnaire_responses
WHERE user_id = ?
ORDER BY submitted_at DESC, id DESC`

func (q *Queries) ListResponses(ctx context.Context, userID int64) ([]QuestionnaireResponse, error) {
	rows, err := q.db.QueryContext(ctx, listResponses, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuestionnaireResponse
	for rows.Next() {
		i, err := scanResponse(rows)
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

const updateResponse = `-- name: UpdateResponse :one
UPDATE questionnaire_responses SET
    salary_confirmed = ?,
    emergency_savings = ?,
    emergency_savings_amount_cents = ?,
    has_debt = ?,
    debt_amount_cents = ?,
    retirement_investing = ?,
    retirement_savings_amount_cents = ?,
    has_children = ?,
    children_count = ?,
    bought_home = ?,
    pay_off_home = ?,
    mortgage_remaining_cents = ?
WHERE id = ? AND user_id = ?
RETURNING ` + responseColumns

func (q *Queries) UpdateResponse(ctx context.Context, id, userID int64, arg ResponseParams) (QuestionnaireResponse, error) {
	row := q.db.QueryRowContext(ctx, updateResponse,
		arg.SalaryConfirmed,
		arg.EmergencySavings,
		arg.EmergencySavingsAmountCents,
		arg.HasDebt,
		arg.DebtAmountCents,
		arg.RetirementInvesting,
		arg.RetirementSavingsAmountCents,
		arg.HasChildren,
		arg.ChildrenCount,
		arg.BoughtHome,
		arg.PayOffHome,
		arg.MortgageRemainingCents,
		id,
		userID,
	)
	return scanResponse(row)
}
