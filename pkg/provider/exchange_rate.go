package provider

import (
	"context"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/shopspring/decimal"
)

// DivisionPrecision is the number of fractional digits kept when deriving a
// cross rate.
const DivisionPrecision = 12

// ExchangeRate defines the interface for external exchange rate providers.
type ExchangeRate interface {
	// Rates returns every known rate relative to the provider's base currency.
	Rates(ctx context.Context) (*RateTable, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// RateTable maps currency codes to units per one unit of Base.
type RateTable struct {
	Base      currency.Code                     `json:"base"`
	Rates     map[currency.Code]decimal.Decimal `json:"rates"`
	Source    string                            `json:"source"`
	FetchedAt time.Time                         `json:"fetched_at"`
}

// Rate returns how many units of to one unit of from buys.
func (t *RateTable) Rate(from, to currency.Code) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	fromRate, err := t.lookup(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := t.lookup(to)
	if err != nil {
		return decimal.Zero, err
	}
	return toRate.DivRound(fromRate, DivisionPrecision), nil
}

func (t *RateTable) lookup(code currency.Code) (decimal.Decimal, error) {
	if code == t.Base {
		return decimal.NewFromInt(1), nil
	}
	r, ok := t.Rates[code]
	if !ok || !r.IsPositive() {
		return decimal.Zero, domain.Errorf(domain.ErrNotFound, "exchange rate unavailable for %s", code)
	}
	return r, nil
}

// AsFloatMap renders the table the way the rates endpoint returns it.
func (t *RateTable) AsFloatMap() map[string]float64 {
	out := make(map[string]float64, len(t.Rates))
	for code, r := range t.Rates {
		out[string(code)], _ = r.Float64()
	}
	return out
}
