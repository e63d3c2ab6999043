package money

import "github.com/amirasaad/lendrix/pkg/domain"

// Common money package errors
var (
	// ErrMismatchedCurrencies is returned when performing operations on money with
	// different currencies
	ErrMismatchedCurrencies = domain.NewError(domain.ErrValidation, "mismatched currencies")

	// ErrInvalidCurrency is returned for codes missing from the currency registry.
	ErrInvalidCurrency = domain.NewError(domain.ErrValidation, "invalid currency code")

	// ErrInvalidAmount is returned when an amount cannot be parsed.
	ErrInvalidAmount = domain.NewError(domain.ErrValidation, "invalid amount")

	// ErrInvalidRate is returned for zero or negative conversion rates.
	ErrInvalidRate = domain.NewError(domain.ErrValidation, "conversion rate must be positive")
)
