// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents. Ratios and percentages go through
// shopspring/decimal so that currency comparisons never touch float64.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money is an exact two-decimal currency amount.
type Money struct {
	Cents int64
}

// NewMoney builds a Money from whole units and cents, e.g. NewMoney(1000, 0).
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

// MoneyFromDecimal rounds d half-up to two places.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero, negative
// and malformed values are rejected.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	m, err := ParseMoney(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// ParseMoney parses a non-negative amount. Unlike ParseDecimalToCents it
// accepts zero, which is a legitimate salary or balance.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Guard the int64 cents range before shifting.
	if d.GreaterThan(decimal.NewFromInt(1 << 53)) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns the amount as a decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// MulRatio multiplies by an exact decimal factor and rounds to cents.
func (m Money) MulRatio(factor decimal.Decimal) Money {
	return MoneyFromDecimal(m.Decimal().Mul(factor))
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }

// GTE reports m >= o.
func (m Money) GTE(o Money) bool { return m.Cents >= o.Cents }

// PercentOf returns m/target*100 capped at 100, or zero when target is not
// positive. The result keeps two decimal places.
func (m Money) PercentOf(target Money) decimal.Decimal {
	if target.Cents <= 0 {
		return decimal.Zero
	}
	pct := m.Decimal().Mul(hundred).Div(target.Decimal())
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	return pct.Round(2)
}

// WholePercentOf returns the truncated integer percentage of m over budget.
// It is not capped, so overspending reports values above 100.
func (m Money) WholePercentOf(budget Money) int {
	if budget.Cents <= 0 {
		return 0
	}
	return int(m.Decimal().Mul(hundred).Div(budget.Decimal()).Truncate(0).IntPart())
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float64 returns the value in currency units for display only.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// MarshalJSON renders the amount as a fixed two-decimal string ("1000.00").
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAmount
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
