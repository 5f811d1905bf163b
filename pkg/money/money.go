// Package money provides Brazilian Real amounts backed by integer centavos
// (Rhymond/go-money) with shopspring/decimal for rate arithmetic, plus the
// parsing and display rules used across the registry.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the only currency the registry deals with.
const BRL = "BRL"

var (
	// ErrInvalidAmount is returned when text cannot be read as an amount.
	ErrInvalidAmount = errors.New("invalid amount")

	amountJunk = regexp.MustCompile(`[^\d,.\-]`)
	display    = money.NewFormatter(2, ",", ".", "", "1")
)

// Money is an amount of reais.
type Money struct {
	m *money.Money
}

// New creates a value from centavos.
func New(centavos int64) *Money {
	return &Money{m: money.New(centavos, BRL)}
}

// Zero returns R$ 0,00.
func Zero() *Money {
	return New(0)
}

// NewFromDecimal rounds a decimal amount half away from zero to centavos.
func NewFromDecimal(amount decimal.Decimal) *Money {
	cents := amount.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return New(cents)
}

// NewFromFloat creates a value from a float. Prefer NewFromDecimal.
func NewFromFloat(amount float64) *Money {
	return NewFromDecimal(decimal.NewFromFloat(amount))
}

// NewFromString parses amounts written like "1.234,56", "1234,56",
// "1234.56" or "R$ 286,66".
func NewFromString(amount string) (*Money, error) {
	d, err := ParseDecimal(amount)
	if err != nil {
		return nil, err
	}
	return NewFromDecimal(d), nil
}

// ParseDecimal reads an amount written by hand in a spreadsheet. Anything
// other than digits, separators and the minus sign is dropped first. With
// both separators present "." groups thousands and "," marks decimals; a
// lone "," is the decimal mark; otherwise the text is parsed as is.
func ParseDecimal(amount string) (decimal.Decimal, error) {
	s := amountJunk.ReplaceAllString(strings.TrimSpace(amount), "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return d, nil
}

// ParseOrZero is ParseDecimal falling back to zero.
func ParseOrZero(amount string) *Money {
	m, err := NewFromString(amount)
	if err != nil {
		return Zero()
	}
	return m
}

// Amount returns the value in centavos.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m.Amount() == 0
}

// IsPositive reports whether the amount is above zero.
func (m *Money) IsPositive() bool {
	return m.Amount() > 0
}

// Add returns m + other.
func (m *Money) Add(other *Money) *Money {
	return New(m.Amount() + other.Amount())
}

// Subtract returns m - other.
func (m *Money) Subtract(other *Money) *Money {
	return New(m.Amount() - other.Amount())
}

// Multiply multiplies by an integer factor.
func (m *Money) Multiply(factor int64) *Money {
	if m == nil || m.m == nil {
		return Zero()
	}
	return &Money{m: m.m.Multiply(factor)}
}

// MultiplyDecimal multiplies by a decimal factor, rounding to centavos.
func (m *Money) MultiplyDecimal(factor decimal.Decimal) *Money {
	return NewFromDecimal(m.ToDecimal().Mul(factor))
}

// DivideDecimal divides by a decimal divisor, rounding to centavos.
// Division by zero yields zero.
func (m *Money) DivideDecimal(divisor decimal.Decimal) *Money {
	if divisor.IsZero() {
		return Zero()
	}
	return NewFromDecimal(m.ToDecimal().Div(divisor))
}

// Percentage returns percent% of the amount (2 for 2%).
func (m *Money) Percentage(percent decimal.Decimal) *Money {
	return m.MultiplyDecimal(percent.Div(decimal.NewFromInt(100)))
}

// NonNegative clamps negative amounts to zero.
func (m *Money) NonNegative() *Money {
	if m.Amount() < 0 {
		return Zero()
	}
	return m
}

// Compare returns -1, 0 or 1.
func (m *Money) Compare(other *Money) int {
	a, b := m.Amount(), other.Amount()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ToDecimal converts to reais as a decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	return decimal.New(m.Amount(), -2)
}

// String returns the plain two-decimal form stored in the database
// ("1234.56").
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(2)
}

// Display returns the amount as printed in reports: "R$ 1.234,56".
func (m *Money) Display() string {
	cents := m.Amount()
	if cents < 0 {
		return "R$ -" + display.Format(-cents)
	}
	return "R$ " + display.Format(cents)
}

// Sum adds all values.
func Sum(values ...*Money) *Money {
	total := Zero()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
