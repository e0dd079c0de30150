package storage

import "database/sql"

type User struct {
	ID                int64
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

type Category struct {
	ID   int64
	Name string
}

type Expense struct {
	ID           int64
	UserID       int64
	CategoryID   int64
	CategoryName string
	ExpenseDate  string
	AmountCents  int64
	CreatedAt    string
}

type QuestionnaireResponse struct {
	ID                           int64
	UserID                       int64
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
	SubmittedAt                  string
}

type ChildrenContribution struct {
	ID                            int64
	UserID                        int64
	ChildName                     string
	ParentName                    string
	TotalContributionPlannedCents sql.NullInt64
	MonthlyContributionCents      sql.NullInt64
	CreatedAt                     string
}

type UserMilestone struct {
	ID          int64
	UserID      int64
	Step        int64
	IsCompleted bool
	CompletedAt sql.NullString
}

type CategorySum struct {
	Name       string
	TotalCents int64
}
