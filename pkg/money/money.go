// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in a specific currency.
// Invariants:
//   - Amount is a fixed-point decimal rounded to the currency's minor unit.
//   - Currency code must be a supported ISO 4217 code.
//   - All arithmetic operations require matching currencies.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   decimal.Decimal
	currency currency.Code
}

// New creates a Money value rounded to the currency's minor unit.
func New(amount decimal.Decimal, code currency.Code) (Money, error) {
	if !currency.IsSupported(string(code)) {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: Round(amount, code), currency: code}, nil
}

// NewFromString parses a decimal string such as "100.50".
func NewFromString(amount string, code currency.Code) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return New(d, code)
}

// NewFromFloat is a convenience for request payloads that arrive as JSON numbers.
func NewFromFloat(amount float64, code currency.Code) (Money, error) {
	return New(decimal.NewFromFloat(amount), code)
}

// Must panics on error. Intended for tests and constants.
func Must(m Money, err error) Money {
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns zero in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: decimal.Zero, currency: code}
}

// Round rounds d half away from zero to the minor unit of code.
func Round(d decimal.Decimal, code currency.Code) decimal.Decimal {
	return d.Round(currency.Decimals(code))
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() currency.Code { return m.currency }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) SameCurrency(o Money) bool { return m.currency == o.currency }

// Add returns m+o. Both must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Add(o.amount), currency: m.currency}, nil
}

// Sub returns m-o. Both must share a currency. The result may be negative.
func (m Money) Sub(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Sub(o.amount), currency: m.currency}, nil
}

// GreaterThanOrEqual compares two values of the same currency.
func (m Money) GreaterThanOrEqual(o Money) (bool, error) {
	if !m.SameCurrency(o) {
		return false, ErrMismatchedCurrencies
	}
	return m.amount.GreaterThanOrEqual(o.amount), nil
}

// LessThan compares two values of the same currency.
func (m Money) LessThan(o Money) (bool, error) {
	if !m.SameCurrency(o) {
		return false, ErrMismatchedCurrencies
	}
	return m.amount.LessThan(o.amount), nil
}

// Equals reports whether both amount and currency match.
func (m Money) Equals(o Money) bool {
	return m.SameCurrency(o) && m.amount.Equal(o.amount)
}

// Convert multiplies by rate and rounds into the target currency.
func (m Money) Convert(rate decimal.Decimal, to currency.Code) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, ErrInvalidRate
	}
	return New(m.amount.Mul(rate), to)
}

// Percent returns pct (0.01 = 1%) of m, rounded to the minor unit.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{amount: Round(m.amount.Mul(pct), m.currency), currency: m.currency}
}

// String renders the amount fixed to the currency's minor unit, e.g. "100.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(currency.Decimals(m.currency)), m.currency)
}

// MarshalJSON implements json.Marshaler interface.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"amount":   m.amount.StringFixed(currency.Decimals(m.currency)),
		"currency": m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency currency.Code   `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
