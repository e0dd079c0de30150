package milestones

import (
	"encoding/json"
	"strings"

	"pfm/internal/core"

	"github.com/shopspring/decimal"
)

const (
	noDataMessage   = "No financial data submitted yet. Please complete the Dave Ramsey form."
	userNotFoundMsg = "User not found"
)

// Input is everything the evaluator reads. Sums is keyed by category name;
// lookups are case-insensitive and a missing category reads as zero.
type Input struct {
	Salary          core.Money
	Response        *core.QuestionnaireResponse
	Sums            map[string]core.Money
	PlannedChildren core.Money
}

// Sum returns the expense total recorded for category.
func (in Input) Sum(category string) core.Money {
	if m, ok := in.Sums[category]; ok {
		return m
	}
	for name, m := range in.Sums {
		if strings.EqualFold(name, category) {
			return m
		}
	}
	return core.Money{}
}

// Result is the outcome of one step. Optional fields are only set for the
// steps they describe.
type Result struct {
	Step              int         `json:"step"`
	Title             string      `json:"title"`
	Completed         bool        `json:"completed"`
	CurrentAmount     *core.Money `json:"current_amount,omitempty"`
	RequiredAmount    *core.Money `json:"required_amount,omitempty"`
	DebtAmount        *core.Money `json:"debt_amount,omitempty"`
	PlannedAmount     *core.Money `json:"planned_amount,omitempty"`
	ChildrenCount     *int        `json:"children_count,omitempty"`
	MortgageRemaining *core.Money `json:"mortgage_remaining,omitempty"`
	AmountPaid        *core.Money `json:"amount_paid,omitempty"`
	Progress          *float64    `json:"progress_percentage,omitempty"`
	Message           string      `json:"message"`
}

// ProgressOrZero returns the step progress, or zero for steps without one.
func (r Result) ProgressOrZero() float64 {
	if r.Progress == nil {
		return 0
	}
	return *r.Progress
}

// Evaluate runs every rule in step order. It returns nil when no
// questionnaire has been submitted.
func Evaluate(in Input) []Result {
	if in.Response == nil {
		return nil
	}
	results := make([]Result, 0, TotalSteps)
	for step := 1; step <= TotalSteps; step++ {
		rule, err := RuleFor(step)
		if err != nil {
			// The registry is static, a missing rule is a programming error.
			panic(err)
		}
		res := rule.Evaluate(in, results)
		res.Step = step
		res.Title = Title(step)
		results = append(results, res)
	}
	return results
}

// Flags returns the completion flag of each result keyed by step.
func Flags(results []Result) map[int]bool {
	out := make(map[int]bool, len(results))
	for _, r := range results {
		out[r.Step] = r.Completed
	}
	return out
}

// Report is the evaluation payload returned to API callers. It has three
// shapes: a full report, a "no data submitted" notice and "user not found".
type Report struct {
	UserID             int64
	Username           string
	ProgressPercentage float64
	CompletedSteps     int
	Milestones         []Result
	CompletedTitles    []string

	NoData   bool
	NotFound bool
}

// NewReport evaluates in for user.
func NewReport(user core.User, in Input) Report {
	results := Evaluate(in)
	if results == nil {
		return Report{UserID: user.ID, Username: user.Username, NoData: true}
	}
	rep := Report{
		UserID:          user.ID,
		Username:        user.Username,
		Milestones:      results,
		CompletedTitles: []string{},
	}
	for _, r := range results {
		if r.Completed {
			rep.CompletedSteps++
			rep.CompletedTitles = append(rep.CompletedTitles, r.Title)
		}
	}
	rep.ProgressPercentage = decimal.NewFromInt(int64(rep.CompletedSteps)).
		Mul(hundred).
		Div(decimal.NewFromInt(TotalSteps)).
		Round(1).
		InexactFloat64()
	return rep
}

// NotFoundReport is returned when the user does not exist.
func NotFoundReport() Report {
	return Report{NotFound: true}
}

func (r Report) MarshalJSON() ([]byte, error) {
	switch {
	case r.NotFound:
		return json.Marshal(map[string]string{"error": userNotFoundMsg})
	case r.NoData:
		return json.Marshal(struct {
			Message    string   `json:"message"`
			Milestones []Result `json:"milestones"`
		}{noDataMessage, []Result{}})
	}
	return json.Marshal(struct {
		UserID             int64    `json:"user_id"`
		Username           string   `json:"username"`
		ProgressPercentage float64  `json:"progress_percentage"`
		CompletedSteps     int      `json:"completed_steps"`
		TotalSteps         int      `json:"total_steps"`
		Milestones         []Result `json:"milestones"`
		CompletedTitles    []string `json:"completed_milestone_titles"`
	}{r.UserID, r.Username, r.ProgressPercentage, r.CompletedSteps, TotalSteps, r.Milestones, r.CompletedTitles})
}
