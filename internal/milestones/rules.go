// This file implements one evaluation strategy per step. Each rule
// encapsulates the completion test and the progress fields for its step;
// the registry maps step numbers to rules.

package milestones

import (
	"fmt"

	"pfm/internal/core"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Kind tags the shape of a rule.
type Kind string

const (
	KindThreshold   Kind = "threshold"
	KindFlag        Kind = "flag"
	KindConditional Kind = "conditional"
	KindAggregate   Kind = "aggregate"
)

// Rule is the strategy interface for a single step. prior holds the results
// of all lower-numbered steps in order.
type Rule interface {
	Kind() Kind
	Evaluate(in Input, prior []Result) Result
}

// ThresholdRule completes when a category sum reaches a target. Gate, when
// set, must also hold. A non-positive target never completes.
type ThresholdRule struct {
	Category string
	Target   func(Input) core.Money
	Gate     func(*core.QuestionnaireResponse) bool
	Progress string // e.g. "saved"
	Done     string
}

func (ThresholdRule) Kind() Kind { return KindThreshold }

func (r ThresholdRule) Evaluate(in Input, _ []Result) Result {
	current := in.Sum(r.Category)
	target := r.Target(in)
	completed := target.IsPositive() && current.GTE(target)
	if r.Gate != nil && !r.Gate(in.Response) {
		completed = false
	}
	res := Result{
		Completed:      completed,
		CurrentAmount:  moneyPtr(current),
		RequiredAmount: moneyPtr(target),
		Progress:       percentPtr(current.PercentOf(target)),
	}
	if completed {
		res.Message = r.Done
	} else {
		res.Message = fmt.Sprintf("%s of %s %s", usd(current), usd(target), r.Progress)
	}
	return res
}

// FlagRule completes when a questionnaire flag holds.
type FlagRule struct {
	Flag   func(*core.QuestionnaireResponse) bool
	Detail func(*core.QuestionnaireResponse, *Result)
}

func (FlagRule) Kind() Kind { return KindFlag }

func (r FlagRule) Evaluate(in Input, _ []Result) Result {
	res := Result{Completed: r.Flag(in.Response)}
	if r.Detail != nil {
		r.Detail(in.Response, &res)
	}
	return res
}

// ShortCircuit auto-completes a step when When holds.
type ShortCircuit struct {
	When    func(*core.QuestionnaireResponse) bool
	Message string
	Detail  func(Input, *Result)
}

// ConditionalRule tries each short circuit in order and falls back to Else.
type ConditionalRule struct {
	Short []ShortCircuit
	Else  Rule
}

func (ConditionalRule) Kind() Kind { return KindConditional }

func (r ConditionalRule) Evaluate(in Input, prior []Result) Result {
	for _, sc := range r.Short {
		if !sc.When(in.Response) {
			continue
		}
		res := Result{Completed: true, Progress: percentPtr(hundred), Message: sc.Message}
		if sc.Detail != nil {
			sc.Detail(in, &res)
		}
		return res
	}
	return r.Else.Evaluate(in, prior)
}

// AggregateRule completes iff every prior step completed.
type AggregateRule struct{}

func (AggregateRule) Kind() Kind { return KindAggregate }

func (AggregateRule) Evaluate(_ Input, prior []Result) Result {
	all := len(prior) > 0
	for _, p := range prior {
		if !p.Completed {
			all = false
			break
		}
	}
	if all {
		return Result{Completed: true, Message: "All previous baby steps completed! 🎉"}
	}
	return Result{Message: "Complete all previous steps first"}
}

// collegeRule measures children contributions against the planned total.
// Without a plan any contribution at all completes the step, at 0%
// progress.
type collegeRule struct{}

func (collegeRule) Kind() Kind { return KindThreshold }

func (collegeRule) Evaluate(in Input, _ []Result) Result {
	current := in.Sum(CategoryChildrenContribution)
	planned := in.PlannedChildren
	children := in.Response.Children()
	res := Result{
		CurrentAmount: moneyPtr(current),
		PlannedAmount: moneyPtr(planned),
		ChildrenCount: &children,
	}
	if !planned.IsPositive() {
		// No target to measure against: progress stays 0 even when complete.
		res.Completed = current.IsPositive()
		res.Progress = percentPtr(decimal.Zero)
		if res.Completed {
			res.Message = "Contributing to education! ✓"
		} else {
			res.Message = fmt.Sprintf("%s contributed", usd(current))
		}
		return res
	}
	res.Completed = current.GTE(planned)
	res.Progress = percentPtr(current.PercentOf(planned))
	if res.Completed {
		res.Message = "Education goal met! ✓"
	} else {
		res.Message = fmt.Sprintf("%s of %s saved", usd(current), usd(planned))
	}
	return res
}

// mortgageRule measures mortgage payments against the remaining balance.
type mortgageRule struct{}

func (mortgageRule) Kind() Kind { return KindThreshold }

func (mortgageRule) Evaluate(in Input, _ []Result) Result {
	paid := in.Sum(CategoryHomeMortgage)
	remaining := in.Response.MortgageOrZero()
	res := Result{
		Completed:         remaining.IsPositive() && paid.GTE(remaining),
		MortgageRemaining: moneyPtr(remaining),
		AmountPaid:        moneyPtr(paid),
		Progress:          percentPtr(paid.PercentOf(remaining)),
	}
	if res.Completed {
		res.Message = "Mortgage paid off! ✓"
	} else {
		res.Message = fmt.Sprintf("%s paid of %s mortgage", usd(paid), usd(remaining))
	}
	return res
}

var (
	starterFund = core.NewMoney(1000, 0)
	six         = decimal.NewFromInt(6)
	fifteenPct  = decimal.RequireFromString("0.15")
	hundred     = decimal.NewFromInt(100)
)

// rules maps each step to its strategy.
var rules = map[int]Rule{
	1: ThresholdRule{
		Category: CategoryEmergencySavings,
		Target:   func(Input) core.Money { return starterFund },
		Gate:     func(q *core.QuestionnaireResponse) bool { return q.EmergencySavings },
		Progress: "saved",
		Done:     "Goal achieved! ✓",
	},
	2: FlagRule{
		Flag: func(q *core.QuestionnaireResponse) bool { return !q.HasDebt },
		Detail: func(q *core.QuestionnaireResponse, r *Result) {
			debt := q.DebtOrZero()
			r.DebtAmount = moneyPtr(debt)
			if r.Completed {
				r.Message = "Debt-free! ✓"
			} else {
				r.Message = fmt.Sprintf("%s debt remaining", usd(debt))
			}
		},
	},
	3: ThresholdRule{
		Category: CategoryFullEmergencySavings,
		Target:   func(in Input) core.Money { return in.Salary.MulRatio(six) },
		Progress: "saved (6 months)",
		Done:     "Fully funded! ✓",
	},
	4: ThresholdRule{
		Category: CategoryRetirementInvesting,
		Target:   func(in Input) core.Money { return in.Salary.MulRatio(fifteenPct) },
		Gate:     func(q *core.QuestionnaireResponse) bool { return q.RetirementInvesting },
		Progress: "invested",
		Done:     "Retirement goal met! ✓",
	},
	5: ConditionalRule{
		Short: []ShortCircuit{{
			When:    func(q *core.QuestionnaireResponse) bool { return !q.HasChildren },
			Message: "No children - Step automatically complete ✓",
			Detail: func(in Input, r *Result) {
				zero := 0
				r.CurrentAmount = moneyPtr(in.Sum(CategoryChildrenContribution))
				r.PlannedAmount = moneyPtr(core.Money{})
				r.ChildrenCount = &zero
			},
		}},
		Else: collegeRule{},
	},
	6: ConditionalRule{
		Short: []ShortCircuit{
			{
				When:    func(q *core.QuestionnaireResponse) bool { return !q.BoughtHome },
				Message: "No home mortgage - Step automatically complete ✓",
				Detail:  mortgageCleared,
			},
			{
				When:    func(q *core.QuestionnaireResponse) bool { return q.PayOffHome },
				Message: "Home paid off! ✓",
				Detail:  mortgageCleared,
			},
		},
		Else: mortgageRule{},
	},
	7: AggregateRule{},
}

func mortgageCleared(in Input, r *Result) {
	r.MortgageRemaining = moneyPtr(core.Money{})
	r.AmountPaid = moneyPtr(in.Sum(CategoryHomeMortgage))
}

// RuleFor returns the strategy for step.
func RuleFor(step int) (Rule, error) {
	rule, ok := rules[step]
	if !ok {
		return nil, fmt.Errorf("no rule for milestone step: %d", step)
	}
	return rule, nil
}

func moneyPtr(m core.Money) *core.Money { return &m }

func percentPtr(d decimal.Decimal) *float64 {
	f := d.Round(2).InexactFloat64()
	return &f
}

// usd renders a display amount such as "$1,234.50".
func usd(m core.Money) string {
	return "$" + humanize.FormatFloat("#,###.##", m.Float64())
}
