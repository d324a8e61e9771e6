package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// BRL is the only currency the CRM deals in
const BRL Currency = "BRL"

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

var hundred = decimal.NewFromInt(100)

// Money is an immutable monetary amount in BRL
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// NewMoneyFromString parses an amount such as "1500.75"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// ZeroMoney returns R$ 0,00
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency always returns BRL
func (m Money) Currency() Currency {
	return BRL
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m minus other
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// DivideBy splits the amount into n equal parts, rounded to cents.
// Dividing by zero yields zero.
func (m Money) DivideBy(n int64) Money {
	if n == 0 {
		return ZeroMoney()
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(n)).Round(2)}
}

// MultiplyByPercent returns pct percent of the amount, rounded to cents
func (m Money) MultiplyByPercent(pct Percentage) Money {
	return Money{amount: m.amount.Mul(pct.value).Div(hundred).Round(2)}
}

// Compare returns -1, 0 or 1
func (m Money) Compare(other Money) int {
	return m.amount.Cmp(other.amount)
}

// String returns the amount with two decimal places, e.g. "1234.50"
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// Format renders the amount the Brazilian way, e.g. "R$ 1.234,56"
func (m Money) Format() string {
	f, _ := m.amount.Round(2).Float64()
	return brPrinter.Sprintf("R$ %v", number.Decimal(f, number.Scale(2)))
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	return m.amount.Scan(value)
}

// ErrPercentageOutOfRange is returned for values outside 0..100
var ErrPercentageOutOfRange = errors.New("percentual deve estar entre 0 e 100")

// Percentage is a decimal between 0 and 100 inclusive
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates that v is within 0..100
func NewPercentage(v decimal.Decimal) (Percentage, error) {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return Percentage{}, ErrPercentageOutOfRange
	}
	return Percentage{value: v}, nil
}

// InPercentRange reports whether v is within 0..100
func InPercentRange(v decimal.Decimal) bool {
	return !v.IsNegative() && !v.GreaterThan(hundred)
}

// Decimal returns the raw percentage value
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

// RatioPercent returns part/total*100 rounded to one decimal place, or zero
// when total is zero
func RatioPercent(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(1)
}
