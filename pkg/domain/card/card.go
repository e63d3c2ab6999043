// Package card models the single funding card a user may hold. A card carries
// its own balance which moves in lockstep with the user's account of the
// same currency.
package card

import (
	"strings"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
)

// Validity is how long a newly issued card stays valid.
const Validity = 3 * 365 * 24 * time.Hour

var (
	ErrAmountMustBePositive = domain.NewError(domain.ErrValidation, "Amount must be greater than 0")
	ErrInsufficientFunds    = domain.NewError(domain.ErrInsufficientFunds, "Insufficient card balance")
	ErrCurrencyMismatch     = domain.NewError(domain.ErrValidation, "currency mismatch")
	ErrInvalidPIN           = domain.NewError(domain.ErrValidation, "PIN must be exactly 4 digits")
	ErrInvalidNumber        = domain.NewError(domain.ErrValidation, "card number must be 16 digits and pass the Luhn check")
)

// Card is a user's funding card.
type Card struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Number         string
	Holder         string
	Balance        money.Money
	BillingAddress string
	PINHash        string
	CVV            string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Params collects the values needed to issue a card.
type Params struct {
	UserID         uuid.UUID
	Number         string
	CVV            string
	Holder         string
	BillingAddress string
	PINHash        string
	Funding        money.Money
	IssuedAt       time.Time
}

// New issues a card funded with p.Funding.
func New(p Params) (*Card, error) {
	if p.UserID == uuid.Nil {
		return nil, domain.NewError(domain.ErrValidation, "userID is required")
	}
	if !ValidNumber(p.Number) {
		return nil, ErrInvalidNumber
	}
	if !p.Funding.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	issued := p.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	return &Card{
		ID:             uuid.New(),
		UserID:         p.UserID,
		Number:         p.Number,
		Holder:         strings.TrimSpace(p.Holder),
		Balance:        p.Funding,
		BillingAddress: p.BillingAddress,
		PINHash:        p.PINHash,
		CVV:            p.CVV,
		ExpiresAt:      issued.Add(Validity),
		CreatedAt:      issued,
		UpdatedAt:      issued,
	}, nil
}

func (c *Card) Currency() currency.Code { return c.Balance.Currency() }

// MaskedNumber shows only the last four digits.
func (c *Card) MaskedNumber() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return strings.Repeat("*", len(c.Number)-4) + c.Number[len(c.Number)-4:]
}

// ValidateSufficientFunds fails when the card balance is below amount.
func (c *Card) ValidateSufficientFunds(amount money.Money) error {
	ok, err := c.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return ErrCurrencyMismatch
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

func (c *Card) checkAmount(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if amount.Currency() != c.Currency() {
		return ErrCurrencyMismatch
	}
	return nil
}

// Credit adds amount to the card balance.
func (c *Card) Credit(amount money.Money) error {
	if err := c.checkAmount(amount); err != nil {
		return err
	}
	bal, err := c.Balance.Add(amount)
	if err != nil {
		return err
	}
	c.Balance = bal
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit removes amount from the card balance, never below zero.
func (c *Card) Debit(amount money.Money) error {
	if err := c.checkAmount(amount); err != nil {
		return err
	}
	if err := c.ValidateSufficientFunds(amount); err != nil {
		return err
	}
	bal, err := c.Balance.Sub(amount)
	if err != nil {
		return err
	}
	c.Balance = bal
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidatePIN checks the PIN format. Only the bcrypt hash is ever stored.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
