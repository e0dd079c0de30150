package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pfm/internal/auth"
	"pfm/internal/core"
	"pfm/internal/milestones"
	"pfm/internal/storage"
)

// ErrForbidden is returned when a user acts on another user's account.
var ErrForbidden = errors.New("forbidden")

const (
	minPasswordLen = 8
	recentLimit    = 5
)

// RegisterInput is the payload accepted at sign-up.
type RegisterInput struct {
	Username          string                `json:"username"`
	Email             string                `json:"email"`
	Password          string                `json:"password"`
	Salary            core.Money            `json:"salary"`
	TotalBalance      core.Money            `json:"total_balance"`
	BudgetPreference  core.BudgetPreference `json:"budget_preference"`
	EmailNotification bool                  `json:"email_notification"`
}

// UserPatch updates only the fields that are set.
type UserPatch struct {
	Username          *string                `json:"username"`
	Email             *string                `json:"email"`
	Password          *string                `json:"password"`
	Salary            *core.Money            `json:"salary"`
	TotalBalance      *core.Money            `json:"total_balance"`
	BudgetPreference  *core.BudgetPreference `json:"budget_preference"`
	EmailNotification *bool                  `json:"email_notification"`
	TelegramChatID    *int64                 `json:"telegram_chat_id"`
}

// Session is returned by register and login.
type Session struct {
	User   core.User `json:"user"`
	Access string    `json:"access"`
}

// Dashboard is the per-user overview for the current month.
type Dashboard struct {
	TotalBalance    core.Money            `json:"total_balance"`
	MonthlyIncome   core.Money            `json:"monthly_income"`
	MonthlyExpenses core.Money            `json:"monthly_expenses"`
	SavingsRate     float64               `json:"savings_rate"`
	ByCategory      []core.CategoryAmount `json:"by_category"`
	RecentExpenses  []core.Expense        `json:"recent_expenses"`
	MilestoneStatus milestones.Report     `json:"milestone_status"`
}

// UserService manages accounts and sessions.
type UserService struct {
	store      storage.Store
	tokens     *auth.Tokens
	milestones *MilestoneService
	now        func() time.Time
}

func NewUserService(store storage.Store, tokens *auth.Tokens, ms *MilestoneService) *UserService {
	return &UserService{store: store, tokens: tokens, milestones: ms, now: time.Now}
}

// WithClock overrides the time source used to pick the dashboard month.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if len(in.Password) < minPasswordLen {
		return Session{}, core.ErrWeakPassword
	}
	if in.BudgetPreference == "" {
		in.BudgetPreference = core.BudgetMonthly
	}
	u := core.User{
		Username:          strings.TrimSpace(in.Username),
		Email:             strings.TrimSpace(in.Email),
		Salary:            in.Salary,
		TotalBalance:      in.TotalBalance,
		BudgetPreference:  in.BudgetPreference,
		EmailNotification: in.EmailNotification,
	}
	if err := u.Validate(); err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = hash

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}
	return s.session(created)
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		slog.InfoContext(ctx, "Failed login attempt", "user_id", u.ID)
		return Session{}, err
	}
	return s.session(u)
}

func (s *UserService) session(u core.User) (Session, error) {
	tok, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: tok}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

// Update applies patch to the account id on behalf of actorID. A salary
// change re-runs the milestone sync because steps 3 and 4 depend on it.
func (s *UserService) Update(ctx context.Context, actorID, id int64, patch UserPatch) (core.User, error) {
	if actorID != id {
		return core.User{}, ErrForbidden
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	salaryBefore := u.Salary

	if patch.Username != nil {
		u.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Salary != nil {
		u.Salary = *patch.Salary
	}
	if patch.TotalBalance != nil {
		u.TotalBalance = *patch.TotalBalance
	}
	if patch.BudgetPreference != nil {
		u.BudgetPreference = *patch.BudgetPreference
	}
	if patch.EmailNotification != nil {
		u.EmailNotification = *patch.EmailNotification
	}
	if patch.TelegramChatID != nil {
		u.TelegramChatID = *patch.TelegramChatID
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLen {
			return core.User{}, core.ErrWeakPassword
		}
		if u.PasswordHash, err = auth.HashPassword(*patch.Password); err != nil {
			return core.User{}, err
		}
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}

	if s.milestones != nil {
		s.milestones.Invalidate(ctx, id)
		if updated.Salary != salaryBefore {
			if err := s.milestones.RecalculateAndNotify(ctx, id); err != nil {
				slog.ErrorContext(ctx, "Failed to recalculate milestones after salary change",
					"user_id", id, "error", err)
				// Don't fail the request - the profile is saved
			}
		}
	}
	return updated, nil
}

// Dashboard summarises the current calendar month for a user.
func (s *UserService) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	today := core.DateOf(s.now().UTC())
	start := today.FirstOfMonth()
	end := core.Date{Time: start.AddDate(0, 1, -1)}

	spent, err := s.store.SumForPeriod(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, err
	}
	byCategory, err := s.store.SumByCategory(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.store.RecentExpenses(ctx, userID, recentLimit)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalBalance:    u.TotalBalance,
		MonthlyIncome:   u.Salary,
		MonthlyExpenses: spent,
		SavingsRate:     core.SavingsRate(u.Salary, spent),
		ByCategory:      byCategory,
		RecentExpenses:  recent,
	}
	if s.milestones != nil {
		if d.MilestoneStatus, err = s.milestones.Evaluate(ctx, userID); err != nil {
			return Dashboard{}, err
		}
	}
	return d, nil
}
