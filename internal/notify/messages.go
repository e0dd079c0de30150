package notify

import (
	"fmt"
	"strings"

	"pfm/internal/budget"
	"pfm/internal/milestones"
)

const milestoneSubject = "Your Dave Ramsey Baby Steps Milestone Update"

// MilestoneUpdate renders the per-step status summary sent after a
// recalculation. flags is keyed by step number.
func MilestoneUpdate(username string, flags map[int]bool) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", username)
	b.WriteString("Here is your latest milestone status:\n\n")
	for _, m := range milestones.All() {
		status := "In progress ⏳"
		if flags[m.Step] {
			status = "COMPLETED ✅"
		}
		fmt.Fprintf(&b, "%d. %s — %s", m.Step, m.Title, status)
		if m.Step < milestones.TotalSteps {
			b.WriteByte('\n')
		}
	}
	b.WriteString("\n\nKeep going – you're making progress!\n")
	return Message{Kind: KindMilestone, Subject: milestoneSubject, Body: b.String()}
}

// BudgetAlert renders the warning sent when a spending threshold is crossed.
func BudgetAlert(username string, s budget.Summary) Message {
	body := fmt.Sprintf("Hi %s,\n\n"+
		"You have spent %s out of your monthly budget %s (%d%% used).\n\n"+
		"Threshold %d%% has been reached.\n"+
		"Please review your recent expenses in the Daily Expenses page.\n\n"+
		"- PFM System",
		username, s.TotalSpent, s.Budget, s.Percentage, int(s.AlertLevel))
	return Message{
		Kind:    KindBudget,
		Subject: fmt.Sprintf("Budget Alert: %d%% of your monthly budget used", s.Percentage),
		Body:    body,
	}
}
