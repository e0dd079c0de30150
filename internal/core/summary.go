package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// SavingsRate returns (income-expenses)/income*100 rounded to two places,
// or zero when income is not positive.
func SavingsRate(income, expenses Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	saved := income.Sub(expenses).Decimal()
	return saved.Mul(hundred).Div(income.Decimal()).Round(2).InexactFloat64()
}
