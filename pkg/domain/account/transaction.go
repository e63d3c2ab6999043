package account

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeDeposit  TransactionType = "DEPOSIT"
	TypeWithdraw TransactionType = "WITHDRAW"
	TypeCredit   TransactionType = "CREDIT"
	TypeTransfer TransactionType = "TRANSFER"
	TypeConvert  TransactionType = "CONVERT"
)

func (t TransactionType) String() string { return string(t) }

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeCredit, TypeTransfer, TypeConvert:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// ExternalParty labels the counterparty of money entering from outside the ledger.
const ExternalParty = "External"

// Transaction is an append-only audit record of a balance mutation.
// It references either an account or a card, never both.
type Transaction struct {
	ID          uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Currency    currency.Code
	Sender      string
	Receiver    string
	Status      TransactionStatus
	UserID      uuid.UUID
	AccountID   *uuid.UUID
	CardID      *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// TransactionBuilder assembles a Transaction and enforces its invariants on Build.
type TransactionBuilder struct {
	tx Transaction
}

// NewTransaction starts a COMPLETED transaction with a fresh id and zero fee.
func NewTransaction(t TransactionType) *TransactionBuilder {
	return &TransactionBuilder{tx: Transaction{
		ID:        uuid.New(),
		Type:      t,
		Fee:       decimal.Zero,
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}}
}

func (b *TransactionBuilder) WithAmount(amount decimal.Decimal, code currency.Code) *TransactionBuilder {
	b.tx.Amount = amount
	b.tx.Currency = code
	return b
}

func (b *TransactionBuilder) WithFee(fee decimal.Decimal) *TransactionBuilder {
	b.tx.Fee = fee
	return b
}

func (b *TransactionBuilder) WithParties(sender, receiver string) *TransactionBuilder {
	b.tx.Sender = sender
	b.tx.Receiver = receiver
	return b
}

func (b *TransactionBuilder) WithOwner(userID uuid.UUID) *TransactionBuilder {
	b.tx.UserID = userID
	return b
}

func (b *TransactionBuilder) ForAccount(id uuid.UUID) *TransactionBuilder {
	b.tx.AccountID = &id
	return b
}

func (b *TransactionBuilder) ForCard(id uuid.UUID) *TransactionBuilder {
	b.tx.CardID = &id
	return b
}

func (b *TransactionBuilder) WithDescription(d string) *TransactionBuilder {
	b.tx.Description = d
	return b
}

func (b *TransactionBuilder) WithCreatedAt(t time.Time) *TransactionBuilder {
	b.tx.CreatedAt = t
	return b
}

func (b *TransactionBuilder) WithID(id uuid.UUID) *TransactionBuilder {
	b.tx.ID = id
	return b
}

func (b *TransactionBuilder) WithStatus(s TransactionStatus) *TransactionBuilder {
	b.tx.Status = s
	return b
}

// Build validates and returns the transaction.
func (b *TransactionBuilder) Build() (*Transaction, error) {
	tx := b.tx
	if !tx.Type.Valid() {
		return nil, domain.Errorf(domain.ErrValidation, "unknown transaction type %q", tx.Type)
	}
	if !tx.Amount.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	if tx.Fee.IsNegative() {
		return nil, domain.NewError(domain.ErrValidation, "fee cannot be negative")
	}
	if tx.UserID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if (tx.AccountID == nil) == (tx.CardID == nil) {
		return nil, domain.NewError(domain.ErrValidation, "transaction must reference exactly one of account or card")
	}
	return &tx, nil
}
