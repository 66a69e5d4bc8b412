// internal/domain/catalog/money.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in a single currency
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

// NewMoney parses a decimal amount such as "19.99"
func NewMoney(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{Amount: d, CurrencyCode: normalizeCurrency(currencyCode)}, nil
}

// Zero returns a zero amount in the given currency
func Zero(currencyCode string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: normalizeCurrency(currencyCode)}
}

// Mul multiplies the amount by a quantity
func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:       m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		CurrencyCode: m.CurrencyCode,
	}
}

// Add sums two amounts. Amounts in different currencies are never converted.
func (m Money) Add(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Equal compares amount and currency
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Amount.Equal(other.Amount)
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// String renders "USD 19.99"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.CurrencyCode, m.Amount.StringFixed(2))
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
