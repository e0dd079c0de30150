package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"pfm/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	tx      *sql.Tx
	queries *Queries
	now     func() time.Time
}

// DSN builds the modernc connection string used by the repository and the
// migrator. Write transactions start IMMEDIATE so a read-evaluate-write
// sequence holds the write lock from its first statement.
func DSN(dbPath string) string {
	v := url.Values{}
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "busy_timeout(5000)")
	v.Add("_pragma", "journal_mode(WAL)")
	v.Set("_txlock", "immediate")
	return "file:" + dbPath + "?" + v.Encode()
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}

	return repo, nil
}

// WithClock overrides the time source used for created/updated stamps.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx implements Store. Nested calls reuse the outer transaction.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Store) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapErr(err))
	}
	txRepo := &SQLiteRepository{db: r.db, tx: tx, queries: r.queries.WithTx(tx), now: r.now}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapErr(err))
	}
	return nil
}

// mapErr translates driver errors into core sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch {
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: database busy: %v", core.ErrConflict, err)
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", core.ErrConflict, err)
		}
	}
	return err
}

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullMoney(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

func moneyPtr(n sql.NullInt64) *core.Money {
	if !n.Valid {
		return nil
	}
	return &core.Money{Cents: n.Int64}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func timePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// expectOne turns a zero rows-affected count into ErrNotFound.
func expectOne(n int64, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Users

func toCoreUser(u User) core.User {
	return core.User{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Salary:            core.Money{Cents: u.SalaryCents},
		TotalBalance:      core.Money{Cents: u.TotalBalanceCents},
		BudgetPreference:  core.BudgetPreference(u.BudgetPreference),
		EmailNotification: u.EmailNotification,
		TelegramChatID:    u.TelegramChatID.Int64,
		CreatedAt:         parseTime(u.CreatedAt),
		UpdatedAt:         parseTime(u.UpdatedAt),
	}
}

func chatID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := r.stamp()
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:          u.Username,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		SalaryCents:       u.Salary.Cents,
		TotalBalanceCents: u.TotalBalance.Cents,
		BudgetPreference:  string(u.BudgetPreference),
		EmailNotification: u.EmailNotification,
		TelegramChatID:    chatID(u.TelegramChatID),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	slog.InfoContext(ctx, "User created", "user_id", row.ID)
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.UpdateUser(ctx, UpdateUserParams{
		Username:          u.Username,
		Email:             u.Email,
		SalaryCents:       u.Salary.Cents,
		TotalBalanceCents: u.TotalBalance.Cents,
		BudgetPreference:  string(u.BudgetPreference),
		EmailNotification: u.EmailNotification,
		TelegramChatID:    chatID(u.TelegramChatID),
		UpdatedAt:         r.stamp(),
		ID:                u.ID,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("update user %d: %w", u.ID, mapErr(err))
	}
	return toCoreUser(row), nil
}

// Categories

func (r *SQLiteRepository) ListUserIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	ids, err := r.queries.ListUserIDsAfter(ctx, afterID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", mapErr(err))
	}
	return ids, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapErr(err))
	}
	return core.Category{ID: row.ID, Name: row.Name}, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, mapErr(err))
	}
	return core.Category{ID: row.ID, Name: row.Name}, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", mapErr(err))
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.UpdateCategory(ctx, c.ID, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, mapErr(err))
	}
	return core.Category{ID: row.ID, Name: row.Name}, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	if err := expectOne(r.queries.DeleteCategory(ctx, id)); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// Expenses

func toCoreExpense(e Expense) core.Expense {
	date, _ := core.ParseDate(e.ExpenseDate)
	return core.Expense{
		ID:           e.ID,
		UserID:       e.UserID,
		CategoryID:   e.CategoryID,
		CategoryName: e.CategoryName,
		Date:         date,
		Amount:       core.Money{Cents: e.AmountCents},
		CreatedAt:    parseTime(e.CreatedAt),
	}
}

func toCoreExpenses(rows []Expense) []core.Expense {
	out := make([]core.Expense, len(rows))
	for i, e := range rows {
		out[i] = toCoreExpense(e)
	}
	return out
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		ExpenseDate: e.Date.String(),
		AmountCents: e.Amount.Cents,
		CreatedAt:   r.stamp(),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", mapErr(err))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"category_id", e.CategoryID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	return r.GetExpense(ctx, e.UserID, id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id, userID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, mapErr(err))
	}
	return toCoreExpense(row), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", mapErr(err))
	}
	return toCoreExpenses(rows), nil
}

func (r *SQLiteRepository) ListExpensesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesInRange(ctx, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses %s..%s: %w", start, end, mapErr(err))
	}
	return toCoreExpenses(rows), nil
}

func (r *SQLiteRepository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error) {
	rows, err := r.queries.ListRecentExpenses(ctx, userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", mapErr(err))
	}
	return toCoreExpenses(rows), nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := expectOne(r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		CategoryID:  e.CategoryID,
		ExpenseDate: e.Date.String(),
		AmountCents: e.Amount.Cents,
		ID:          e.ID,
		UserID:      e.UserID,
	}))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := expectOne(r.queries.DeleteExpense(ctx, id, userID)); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SumForCategory(ctx context.Context, userID int64, category string) (core.Money, error) {
	total, err := r.queries.SumExpensesForCategory(ctx, userID, category)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses for category %q: %w", category, mapErr(err))
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) SumForPeriod(ctx context.Context, userID int64, start, end core.Date) (core.Money, error) {
	total, err := r.queries.SumExpensesForPeriod(ctx, userID, start.String(), end.String())
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses %s..%s: %w", start, end, mapErr(err))
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) SumByCategory(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryAmount, error) {
	rows, err := r.queries.SumExpensesByCategory(ctx, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", mapErr(err))
	}
	out := make([]core.CategoryAmount, len(rows))
	for i, cs := range rows {
		out[i] = core.CategoryAmount{Name: cs.Name, Amount: core.Money{Cents: cs.TotalCents}}
	}
	return out, nil
}

// Questionnaire responses

func toCoreResponse(q QuestionnaireResponse) core.QuestionnaireResponse {
	return core.QuestionnaireResponse{
		ID:                      q.ID,
		UserID:                  q.UserID,
		SalaryConfirmed:         q.SalaryConfirmed,
		EmergencySavings:        q.EmergencySavings,
		EmergencySavingsAmount:  moneyPtr(q.EmergencySavingsAmountCents),
		HasDebt:                 q.HasDebt,
		DebtAmount:              moneyPtr(q.DebtAmountCents),
		RetirementInvesting:     q.RetirementInvesting,
		RetirementSavingsAmount: moneyPtr(q.RetirementSavingsAmountCents),
		HasChildren:             q.HasChildren,
		ChildrenCount:           intPtr(q.ChildrenCount),
		BoughtHome:              q.BoughtHome,
		PayOffHome:              q.PayOffHome,
		MortgageRemaining:       moneyPtr(q.MortgageRemainingCents),
		SubmittedAt:             parseTime(q.SubmittedAt),
	}
}

func responseParams(q core.QuestionnaireResponse) ResponseParams {
	return ResponseParams{
		SalaryConfirmed:              q.SalaryConfirmed,
		EmergencySavings:             q.EmergencySavings,
		EmergencySavingsAmountCents:  nullMoney(q.EmergencySavingsAmount),
		HasDebt:                      q.HasDebt,
		DebtAmountCents:              nullMoney(q.DebtAmount),
		RetirementInvesting:          q.RetirementInvesting,
		RetirementSavingsAmountCents: nullMoney(q.RetirementSavingsAmount),
		HasChildren:                  q.HasChildren,
		ChildrenCount:                nullInt(q.ChildrenCount),
		BoughtHome:                   q.BoughtHome,
		PayOffHome:                   q.PayOffHome,
		MortgageRemainingCents:       nullMoney(q.MortgageRemaining),
	}
}

func (r *SQLiteRepository) CreateResponse(ctx context.Context, q core.QuestionnaireResponse) (core.QuestionnaireResponse, error) {
	submitted := r.stamp()
	if !q.SubmittedAt.IsZero() {
		submitted = q.SubmittedAt.UTC().Format(timeLayout)
	}
	row, err := r.queries.CreateResponse(ctx, q.UserID, responseParams(q), submitted)
	if err != nil {
		return core.QuestionnaireResponse{}, fmt.Errorf("create questionnaire response: %w", mapErr(err))
	}
	return toCoreResponse(row), nil
}

func (r *SQLiteRepository) GetResponse(ctx context.Context, userID, id int64) (core.QuestionnaireResponse, error) {
	row, err := r.queries.GetResponse(ctx, id, userID)
	if err != nil {
		return core.QuestionnaireResponse{}, fmt.Errorf("get questionnaire response %d: %w", id, mapErr(err))
	}
	return toCoreResponse(row), nil
}

func (r *SQLiteRepository) ListResponses(ctx context.Context, userID int64) ([]core.QuestionnaireResponse, error) {
	rows, err := r.queries.ListResponses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list questionnaire responses: %w", mapErr(err))
	}
	out := make([]core.QuestionnaireResponse, len(rows))
	for i, q := range rows {
		out[i] = toCoreResponse(q)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateResponse(ctx context.Context, q core.QuestionnaireResponse) (core.QuestionnaireResponse, error) {
	row, err := r.queries.UpdateResponse(ctx, q.ID, q.UserID, responseParams(q))
	if err != nil {
		return core.QuestionnaireResponse{}, fmt.Errorf("update questionnaire response %d: %w", q.ID, mapErr(err))
	}
	return toCoreResponse(row), nil
}

func (r *SQLiteRepository) LatestResponse(ctx context.Context, userID int64) (*core.QuestionnaireResponse, error) {
	row, err := r.queries.LatestResponse(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest questionnaire response: %w", mapErr(err))
	}
	resp := toCoreResponse(row)
	return &resp, nil
}

// Children contributions

func toCoreChild(c ChildrenContribution) core.ChildrenContribution {
	return core.ChildrenContribution{
		ID:                       c.ID,
		UserID:                   c.UserID,
		ChildName:                c.ChildName,
		ParentName:               c.ParentName,
		TotalContributionPlanned: moneyPtr(c.TotalContributionPlannedCents),
		MonthlyContribution:      moneyPtr(c.MonthlyContributionCents),
		CreatedAt:                parseTime(c.CreatedAt),
	}
}

func childParams(c core.ChildrenContribution) ChildParams {
	return ChildParams{
		ChildName:                     c.ChildName,
		ParentName:                    c.ParentName,
		TotalContributionPlannedCents: nullMoney(c.TotalContributionPlanned),
		MonthlyContributionCents:      nullMoney(c.MonthlyContribution),
	}
}

func (r *SQLiteRepository) CreateChild(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error) {
	row, err := r.queries.CreateChild(ctx, c.UserID, childParams(c), r.stamp())
	if err != nil {
		return core.ChildrenContribution{}, fmt.Errorf("create children contribution: %w", mapErr(err))
	}
	return toCoreChild(row), nil
}

func (r *SQLiteRepository) GetChild(ctx context.Context, userID, id int64) (core.ChildrenContribution, error) {
	row, err := r.queries.GetChild(ctx, id, userID)
	if err != nil {
		return core.ChildrenContribution{}, fmt.Errorf("get children contribution %d: %w", id, mapErr(err))
	}
	return toCoreChild(row), nil
}

func (r *SQLiteRepository) ListChildren(ctx context.Context, userID int64) ([]core.ChildrenContribution, error) {
	rows, err := r.queries.ListChildren(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list children contributions: %w", mapErr(err))
	}
	out := make([]core.ChildrenContribution, len(rows))
	for i, c := range rows {
		out[i] = toCoreChild(c)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateChild(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error) {
	row, err := r.queries.UpdateChild(ctx, c.ID, c.UserID, childParams(c))
	if err != nil {
		return core.ChildrenContribution{}, fmt.Errorf("update children contribution %d: %w", c.ID, mapErr(err))
	}
	return toCoreChild(row), nil
}

func (r *SQLiteRepository) DeleteChild(ctx context.Context, userID, id int64) error {
	if err := expectOne(r.queries.DeleteChild(ctx, id, userID)); err != nil {
		return fmt.Errorf("delete children contribution %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) PlannedContributionTotal(ctx context.Context, userID int64) (core.Money, error) {
	total, err := r.queries.SumPlannedContributions(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum planned contributions: %w", mapErr(err))
	}
	return core.Money{Cents: total}, nil
}

// Milestones

func toCoreMilestone(m UserMilestone) core.UserMilestoneStatus {
	return core.UserMilestoneStatus{
		ID:          m.ID,
		UserID:      m.UserID,
		Step:        int(m.Step),
		IsCompleted: m.IsCompleted,
		CompletedAt: timePtr(m.CompletedAt),
	}
}

func (r *SQLiteRepository) ListUserMilestones(ctx context.Context, userID int64) ([]core.UserMilestoneStatus, error) {
	rows, err := r.queries.ListUserMilestones(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user milestones: %w", mapErr(err))
	}
	out := make([]core.UserMilestoneStatus, len(rows))
	for i, m := range rows {
		out[i] = toCoreMilestone(m)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateUserMilestone(ctx context.Context, s core.UserMilestoneStatus) (core.UserMilestoneStatus, error) {
	row, err := r.queries.CreateUserMilestone(ctx, s.UserID, int64(s.Step), s.IsCompleted, nullTime(s.CompletedAt))
	if err != nil {
		return core.UserMilestoneStatus{}, fmt.Errorf("create user milestone (user=%d, step=%d): %w", s.UserID, s.Step, mapErr(err))
	}
	return toCoreMilestone(row), nil
}

func (r *SQLiteRepository) UpdateUserMilestone(ctx context.Context, s core.UserMilestoneStatus) error {
	if err := expectOne(r.queries.UpdateUserMilestone(ctx, s.ID, s.IsCompleted, nullTime(s.CompletedAt))); err != nil {
		return fmt.Errorf("update user milestone %d: %w", s.ID, err)
	}
	return nil
}

// Budget alerts

func (r *SQLiteRepository) RecordBudgetAlert(ctx context.Context, userID int64, period string, threshold int, at time.Time) (bool, error) {
	n, err := r.queries.InsertBudgetAlert(ctx, userID, period, int64(threshold), at.UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("record budget alert: %w", mapErr(err))
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ReleaseBudgetAlert(ctx context.Context, userID int64, period string, threshold int) error {
	if err := r.queries.DeleteBudgetAlert(ctx, userID, period, int64(threshold)); err != nil {
		return fmt.Errorf("release budget alert: %w", mapErr(err))
	}
	return nil
}

var _ Store = (*SQLiteRepository)(nil)
