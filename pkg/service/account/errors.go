package account

import (
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
)

var (
	ErrSenderNotFound         = domain.NewError(domain.ErrNotFound, "Sender account not found")
	ErrReceiverNotFound       = domain.NewError(domain.ErrNotFound, "Receiver account not found")
	ErrRecipientNumber        = domain.NewError(domain.ErrValidation, "Recipient account number must be numeric")
	ErrDepositAmount          = domain.NewError(domain.ErrValidation, "Deposit amount must be greater than zero")
	ErrSameCurrencyConversion = domain.NewError(domain.ErrValidation, "Source and target currencies must differ")
	ErrConversionTooSmall     = domain.NewError(domain.ErrValidation, "Converted amount is too small")
)

// ErrAccountNotFound is the NotFound error for a user's account in code.
func ErrAccountNotFound(code currency.Code) error {
	return domain.Errorf(domain.ErrNotFound, "No %s account found for user", code)
}

