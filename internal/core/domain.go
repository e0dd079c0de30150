package core

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	BudgetDaily   BudgetPreference = "daily"
	BudgetWeekly  BudgetPreference = "weekly"
	BudgetMonthly BudgetPreference = "monthly"
	BudgetYearly  BudgetPreference = "yearly"
)

const dateLayout = "2006-01-02"

type (
	BudgetPreference string

	Date struct {
		time.Time
	}

	User struct {
		ID                int64            `json:"user_id"`
		Username          string           `json:"username"`
		Email             string           `json:"email"`
		PasswordHash      string           `json:"-"`
		Salary            Money            `json:"salary"`
		TotalBalance      Money            `json:"total_balance"`
		BudgetPreference  BudgetPreference `json:"budget_preference"`
		EmailNotification bool             `json:"email_notification"`
		TelegramChatID    int64            `json:"telegram_chat_id,omitempty"`
		CreatedAt         time.Time        `json:"created_at"`
		UpdatedAt         time.Time        `json:"updated_at"`
	}

	Category struct {
		ID   int64  `json:"category_id"`
		Name string `json:"name"`
	}

	Expense struct {
		ID           int64     `json:"expense_id"`
		UserID       int64     `json:"user_id"`
		CategoryID   int64     `json:"category_id"`
		CategoryName string    `json:"category_name,omitempty"`
		Date         Date      `json:"expense_date"`
		Amount       Money     `json:"amount"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// QuestionnaireResponse is one self-reported snapshot of a user's
	// financial situation. Only the latest one per user is evaluated.
	QuestionnaireResponse struct {
		ID                      int64     `json:"response_id"`
		UserID                  int64     `json:"user_id"`
		SalaryConfirmed         bool      `json:"salary_confirmed"`
		EmergencySavings        bool      `json:"emergency_savings"`
		EmergencySavingsAmount  *Money    `json:"emergency_savings_amount"`
		HasDebt                 bool      `json:"has_debt"`
		DebtAmount              *Money    `json:"debt_amount"`
		RetirementInvesting     bool      `json:"retirement_investing"`
		RetirementSavingsAmount *Money    `json:"retirement_savings_amount"`
		HasChildren             bool      `json:"has_children"`
		ChildrenCount           *int      `json:"children_count"`
		BoughtHome              bool      `json:"bought_home"`
		PayOffHome              bool      `json:"pay_off_home"`
		MortgageRemaining       *Money    `json:"mortgage_remaining"`
		SubmittedAt             time.Time `json:"submitted_at"`
	}

	ChildrenContribution struct {
		ID                       int64     `json:"child_id"`
		UserID                   int64     `json:"user_id"`
		ChildName                string    `json:"child_name"`
		ParentName               string    `json:"parent_name"`
		TotalContributionPlanned *Money    `json:"total_contribution_planned"`
		MonthlyContribution      *Money    `json:"monthly_contribution"`
		CreatedAt                time.Time `json:"created_at"`
	}

	// UserMilestoneStatus is the persisted completion state of one step for
	// one user. Rows are created on first evaluation and never deleted.
	UserMilestoneStatus struct {
		ID          int64      `json:"umid"`
		UserID      int64      `json:"user_id"`
		Step        int        `json:"milestone_id"`
		IsCompleted bool       `json:"is_completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}
)

// ErrValidation is matched by every input validation error in this package.
var ErrValidation = errors.New("validation failed")

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type validationError struct{ msg string }

func (e *validationError) Error() string        { return e.msg }
func (e *validationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(msg string) error { return &validationError{msg: msg} }

var (
	ErrInvalidDay         = newValidationError("invalid day")
	ErrInvalidMonth       = newValidationError("invalid month")
	ErrInvalidDate        = newValidationError("invalid date")
	ErrInvalidAmount      = newValidationError("invalid amount")
	ErrNegativeAmount     = newValidationError("amount cannot be negative")
	ErrEmptyUsername      = newValidationError("empty username")
	ErrInvalidEmail       = newValidationError("invalid email")
	ErrInvalidPreference  = newValidationError("invalid budget preference")
	ErrEmptyCategoryName  = newValidationError("empty category name")
	ErrMissingCategory    = newValidationError("category is required")
	ErrEmptyChildName     = newValidationError("empty child name")
	ErrEmptyParentName    = newValidationError("empty parent name")
	ErrInvalidChildrenNum = newValidationError("children count cannot be negative")
	ErrWeakPassword       = newValidationError("password must be at least 8 characters")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// FirstOfMonth returns the first calendar day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (p BudgetPreference) IsValid() bool {
	switch p {
	case BudgetDaily, BudgetWeekly, BudgetMonthly, BudgetYearly:
		return true
	default:
		return false
	}
}

func (u User) Validate() error {
	name := strings.TrimSpace(u.Username)
	if name == "" || len(name) > 150 {
		return ErrEmptyUsername
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if u.Salary.Cents < 0 || u.TotalBalance.Cents < 0 {
		return ErrNegativeAmount
	}
	if !u.BudgetPreference.IsValid() {
		return ErrInvalidPreference
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || len(name) > 100 {
		return ErrEmptyCategoryName
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}

func (q QuestionnaireResponse) Validate() error {
	for _, m := range []*Money{q.EmergencySavingsAmount, q.DebtAmount, q.RetirementSavingsAmount, q.MortgageRemaining} {
		if m != nil && m.Cents < 0 {
			return ErrNegativeAmount
		}
	}
	if q.ChildrenCount != nil && *q.ChildrenCount < 0 {
		return ErrInvalidChildrenNum
	}
	return nil
}

// DebtOrZero returns the declared debt, treating a missing value as zero.
func (q QuestionnaireResponse) DebtOrZero() Money {
	if q.DebtAmount == nil {
		return Money{}
	}
	return *q.DebtAmount
}

// MortgageOrZero returns the remaining mortgage, treating a missing value as zero.
func (q QuestionnaireResponse) MortgageOrZero() Money {
	if q.MortgageRemaining == nil {
		return Money{}
	}
	return *q.MortgageRemaining
}

// Children returns the declared number of children, or zero without children.
func (q QuestionnaireResponse) Children() int {
	if !q.HasChildren || q.ChildrenCount == nil {
		return 0
	}
	return *q.ChildrenCount
}

func (c ChildrenContribution) Validate() error {
	if strings.TrimSpace(c.ChildName) == "" || len(c.ChildName) > 100 {
		return ErrEmptyChildName
	}
	if strings.TrimSpace(c.ParentName) == "" || len(c.ParentName) > 100 {
		return ErrEmptyParentName
	}
	for _, m := range []*Money{c.TotalContributionPlanned, c.MonthlyContribution} {
		if m != nil && m.Cents < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}
