// Package budget computes month-to-date spending against a monthly budget
// and picks the alert threshold that has been crossed.
package budget

import (
	"time"

	"pfm/internal/core"
)

// Level is an alert threshold as a whole percentage. Zero means no alert.
type Level int

const (
	LevelNone     Level = 0
	LevelWarning  Level = 75
	LevelCritical Level = 90
	LevelExceeded Level = 100
)

// Thresholds lists the alert levels in ascending order.
var Thresholds = []Level{LevelWarning, LevelCritical, LevelExceeded}

// Summary is the result of one budget check.
type Summary struct {
	TotalSpent   core.Money `json:"total_spent"`
	Budget       core.Money `json:"budget"`
	Percentage   int        `json:"percentage"`
	AlertLevel   Level      `json:"alert_level"`
	Period       string     `json:"period"`
	NewlyCrossed bool       `json:"newly_crossed"`
}

// Check compares spent with budget. ok is false when the budget is not
// positive or no threshold has been crossed.
func Check(budget, spent core.Money, today core.Date) (Summary, bool) {
	if !budget.IsPositive() {
		return Summary{}, false
	}
	pct := spent.WholePercentOf(budget)
	level := LevelFor(pct)
	if level == LevelNone {
		return Summary{}, false
	}
	return Summary{
		TotalSpent: spent,
		Budget:     budget,
		Percentage: pct,
		AlertLevel: level,
		Period:     Period(today),
	}, true
}

// LevelFor returns the highest threshold at or below pct.
func LevelFor(pct int) Level {
	level := LevelNone
	for _, t := range Thresholds {
		if pct >= int(t) {
			level = t
		}
	}
	return level
}

// Crossed returns every threshold at or below level, ascending.
func Crossed(level Level) []Level {
	var out []Level
	for _, t := range Thresholds {
		if t <= level {
			out = append(out, t)
		}
	}
	return out
}

// MonthToDate returns the first of today's month and today.
func MonthToDate(today core.Date) (start, end core.Date) {
	return today.FirstOfMonth(), today
}

// Period formats the calendar month of d as YYYY-MM.
func Period(d core.Date) string {
	return d.Format("2006-01")
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) core.Date {
	if loc == nil {
		loc = time.UTC
	}
	return core.DateOf(now.In(loc))
}
