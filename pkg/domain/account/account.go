package account

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAmountMustBePositive is returned when a debit, credit or transfer amount is not positive.
	ErrAmountMustBePositive = domain.NewError(domain.ErrValidation, "Amount must be greater than 0")

	// ErrInsufficientFunds is returned when an account cannot cover a debit.
	ErrInsufficientFunds = domain.NewError(domain.ErrInsufficientFunds, "Insufficient balance")

	// ErrCannotTransferToSameAccount is returned when a transfer is attempted from an account to itself.
	ErrCannotTransferToSameAccount = domain.NewError(domain.ErrValidation, "cannot transfer to same account")

	// ErrCurrencyMismatch is returned when there is a currency mismatch between accounts or amounts.
	ErrCurrencyMismatch = domain.NewError(domain.ErrValidation, "currency mismatch")

	// ErrUserRequired is returned when building an account without an owner.
	ErrUserRequired = domain.NewError(domain.ErrValidation, "userID is required")
)

// NumberGenerator hands out unique account numbers.
type NumberGenerator interface {
	Next() int64
}

// Account is a single-currency balance owned by one user.
//
// Invariants:
//   - The balance is never negative.
//   - A user holds at most one account per currency.
//   - Number is globally unique and never changes.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Number    int64
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	number    int64
	balance   decimal.Decimal
	currency  currency.Code
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder with sensible defaults, such as a new UUID and the default currency.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		currency:  currency.DefaultCurrency,
		balance:   decimal.Zero,
		createdAt: now,
		updatedAt: now,
	}
}

func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithCurrency(code currency.Code) *Builder {
	b.currency = code
	return b
}

func (b *Builder) WithNumber(n int64) *Builder {
	b.number = n
	return b
}

// WithBalance sets the balance. Only for hydrating from a data store or for test setup.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the account.
func (b *Builder) Build() (*Account, error) {
	if _, err := currency.Parse(string(b.currency)); err != nil {
		return nil, err
	}
	if b.userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if b.balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	bal, err := money.New(b.balance, b.currency)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:        b.id,
		UserID:    b.userID,
		Number:    b.number,
		Balance:   bal,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

func (a *Account) Currency() currency.Code {
	return a.Balance.Currency()
}

func (a *Account) validateAmount(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if amount.Currency() != a.Currency() {
		return ErrCurrencyMismatch
	}
	return nil
}

// ValidateSufficientFunds fails with ErrInsufficientFunds when the balance is below amount.
// It never mutates the account.
func (a *Account) ValidateSufficientFunds(amount money.Money) error {
	if amount.Currency() != a.Currency() {
		return ErrCurrencyMismatch
	}
	ok, err := a.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

// Credit adds a positive amount to the balance.
func (a *Account) Credit(amount money.Money) error {
	if err := a.validateAmount(amount); err != nil {
		return err
	}
	bal, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = bal
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit removes a positive amount. The balance never goes below zero.
func (a *Account) Debit(amount money.Money) error {
	if err := a.validateAmount(amount); err != nil {
		return err
	}
	if err := a.ValidateSufficientFunds(amount); err != nil {
		return err
	}
	bal, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = bal
	a.UpdatedAt = time.Now().UTC()
	return nil
}
