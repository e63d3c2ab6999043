package provider

import (
	"context"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/shopspring/decimal"
)

// StaticExchangeRate serves a fixed table. It backs development setups with
// no API key and tests that need deterministic rates.
type StaticExchangeRate struct {
	base  currency.Code
	rates map[currency.Code]decimal.Decimal
}

// NewStaticExchangeRate copies rates; each value is units per one base.
func NewStaticExchangeRate(base currency.Code, rates map[currency.Code]decimal.Decimal) *StaticExchangeRate {
	copied := make(map[currency.Code]decimal.Decimal, len(rates)+1)
	for k, v := range rates {
		copied[k] = v
	}
	copied[base] = decimal.NewFromInt(1)
	return &StaticExchangeRate{base: base, rates: copied}
}

// DefaultStaticRates is a snapshot of USD-based rates for the supported currencies.
func DefaultStaticRates() map[currency.Code]decimal.Decimal {
	return map[currency.Code]decimal.Decimal{
		currency.EUR: decimal.RequireFromString("0.90"),
		currency.GBP: decimal.RequireFromString("0.78"),
		currency.JPY: decimal.RequireFromString("150"),
		currency.KWD: decimal.RequireFromString("0.307"),
		currency.EGP: decimal.RequireFromString("48.5"),
		currency.CAD: decimal.RequireFromString("1.36"),
		currency.AUD: decimal.RequireFromString("1.52"),
		currency.CHF: decimal.RequireFromString("0.88"),
		currency.CNY: decimal.RequireFromString("7.2"),
		currency.INR: decimal.RequireFromString("83.3"),
		currency.NGN: decimal.RequireFromString("1500"),
	}
}

func (s *StaticExchangeRate) Rates(context.Context) (*provider.RateTable, error) {
	rates := make(map[currency.Code]decimal.Decimal, len(s.rates))
	for k, v := range s.rates {
		rates[k] = v
	}
	return &provider.RateTable{
		Base:      s.base,
		Rates:     rates,
		Source:    s.Name(),
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (s *StaticExchangeRate) Name() string { return "static" }

var _ provider.ExchangeRate = (*StaticExchangeRate)(nil)
