// Package milestones evaluates progress through the seven Baby Steps.
//
// The seven definitions are a fixed compile-time table. Evaluation is a pure
// function of the user's salary, latest questionnaire answers and category
// sums: it never touches storage, so callers decide what to persist.
package milestones

import "fmt"

// TotalSteps is the number of fixed milestones.
const TotalSteps = 7

// Category names whose expense sums feed the evaluator.
const (
	CategoryEmergencySavings     = "Emergency Savings"
	CategoryFullEmergencySavings = "Full Emergency Savings"
	CategoryRetirementInvesting  = "Retirement Investing"
	CategoryChildrenContribution = "Children Contribution"
	CategoryHomeMortgage         = "Home Mortgage"
)

// Milestone is one immutable Baby Step definition.
type Milestone struct {
	Step        int    `json:"milestone_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var definitions = [TotalSteps]Milestone{
	{1, "Baby Step 1: Save $1,000 for a starter emergency fund", "Build a small cash buffer before attacking debt."},
	{2, "Baby Step 2: Pay off all debt (except the house) using the debt snowball", "List debts smallest to largest and pay them off in order."},
	{3, "Baby Step 3: Save 3–6 months of expenses in a fully funded emergency fund", "Grow the starter fund into a full emergency fund."},
	{4, "Baby Step 4: Invest 15% of household income in retirement", "Put 15% of gross income into retirement accounts."},
	{5, "Baby Step 5: Save for your children's college education", "Fund education savings for each child."},
	{6, "Baby Step 6: Pay off your home early", "Throw extra money at the mortgage."},
	{7, "Baby Step 7: Build wealth and give generously", "Keep investing and give."},
}

// Categories lists the category names the evaluator reads, in step order.
var Categories = []string{
	CategoryEmergencySavings,
	CategoryFullEmergencySavings,
	CategoryRetirementInvesting,
	CategoryChildrenContribution,
	CategoryHomeMortgage,
}

// All returns a copy of the seven definitions in step order.
func All() []Milestone {
	out := make([]Milestone, TotalSteps)
	copy(out, definitions[:])
	return out
}

// Get returns the definition for step 1..7.
func Get(step int) (Milestone, error) {
	if step < 1 || step > TotalSteps {
		return Milestone{}, fmt.Errorf("unknown milestone step: %d", step)
	}
	return definitions[step-1], nil
}

// Title returns the title for step, or an empty string for an unknown step.
func Title(step int) string {
	m, err := Get(step)
	if err != nil {
		return ""
	}
	return m.Title
}
