// Package events holds the facts the ledger publishes after a unit of work commits.
package events

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an event on the bus and its Kafka topic suffix.
type EventType string

func (t EventType) String() string { return string(t) }

const (
	AccountCreatedType       EventType = "AccountCreated"
	DepositCompletedType     EventType = "DepositCompleted"
	TransferCompletedType    EventType = "TransferCompleted"
	CurrencyConvertedType    EventType = "CurrencyConverted"
	CardIssuedType           EventType = "CardIssued"
	CardBalanceChangedType   EventType = "CardBalanceChanged"
	CardDeletedType          EventType = "CardDeleted"
	MoneyRequestedType       EventType = "MoneyRequested"
	MoneyRequestResolvedType EventType = "MoneyRequestResolved"
	UserRegisteredType       EventType = "UserRegistered"
)

// Event is implemented by every published fact.
type Event interface {
	Type() string
}

// Meta is embedded in every event.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta stamps a fresh event id and time.
func NewMeta(userID uuid.UUID) Meta {
	return Meta{ID: uuid.New(), UserID: userID, OccurredAt: time.Now().UTC()}
}

type UserRegistered struct {
	Meta
	Username string `json:"username"`
}

func (UserRegistered) Type() string { return UserRegisteredType.String() }

type AccountCreated struct {
	Meta
	AccountID uuid.UUID `json:"account_id"`
	Number    int64     `json:"number"`
	Currency  string    `json:"currency"`
}

func (AccountCreated) Type() string { return AccountCreatedType.String() }

type DepositCompleted struct {
	Meta
	AccountID     uuid.UUID   `json:"account_id"`
	TransactionID uuid.UUID   `json:"transaction_id"`
	Amount        money.Money `json:"amount"`
	Method        string      `json:"method"`
}

func (DepositCompleted) Type() string { return DepositCompletedType.String() }

type TransferCompleted struct {
	Meta
	SenderAccountID   uuid.UUID   `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID   `json:"receiver_account_id"`
	ReceiverUserID    uuid.UUID   `json:"receiver_user_id"`
	TransactionID     uuid.UUID   `json:"transaction_id"`
	Amount            money.Money `json:"amount"`
	MoneyRequestID    *uuid.UUID  `json:"money_request_id,omitempty"`
}

func (TransferCompleted) Type() string { return TransferCompletedType.String() }

type CurrencyConverted struct {
	Meta
	TransactionID uuid.UUID       `json:"transaction_id"`
	From          money.Money     `json:"from"`
	To            money.Money     `json:"to"`
	Rate          decimal.Decimal `json:"rate"`
	Fee           money.Money     `json:"fee"`
}

func (CurrencyConverted) Type() string { return CurrencyConvertedType.String() }

type CardIssued struct {
	Meta
	CardID       uuid.UUID   `json:"card_id"`
	MaskedNumber string      `json:"masked_number"`
	Funding      money.Money `json:"funding"`
}

func (CardIssued) Type() string { return CardIssuedType.String() }

// CardBalanceChanged is published for both credit and debit; Delta is signed.
type CardBalanceChanged struct {
	Meta
	CardID  uuid.UUID       `json:"card_id"`
	Delta   decimal.Decimal `json:"delta"`
	Balance money.Money     `json:"balance"`
}

func (CardBalanceChanged) Type() string { return CardBalanceChangedType.String() }

// CardDeleted carries the balance left on the card at deletion.
type CardDeleted struct {
	Meta
	CardID          uuid.UUID   `json:"card_id"`
	ResidualBalance money.Money `json:"residual_balance"`
}

func (CardDeleted) Type() string { return CardDeletedType.String() }

type MoneyRequested struct {
	Meta
	RequestID   uuid.UUID   `json:"request_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Amount      money.Money `json:"amount"`
}

func (MoneyRequested) Type() string { return MoneyRequestedType.String() }

type MoneyRequestResolved struct {
	Meta
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
}

func (MoneyRequestResolved) Type() string { return MoneyRequestResolvedType.String() }

// EventTypes builds an empty event for each known type; bus consumers decode
// payloads into them.
var EventTypes = map[EventType]func() Event{
	UserRegisteredType:       func() Event { return &UserRegistered{} },
	AccountCreatedType:       func() Event { return &AccountCreated{} },
	DepositCompletedType:     func() Event { return &DepositCompleted{} },
	TransferCompletedType:    func() Event { return &TransferCompleted{} },
	CurrencyConvertedType:    func() Event { return &CurrencyConverted{} },
	CardIssuedType:           func() Event { return &CardIssued{} },
	CardBalanceChangedType:   func() Event { return &CardBalanceChanged{} },
	CardDeletedType:          func() Event { return &CardDeleted{} },
	MoneyRequestedType:       func() Event { return &MoneyRequested{} },
	MoneyRequestResolvedType: func() Event { return &MoneyRequestResolved{} },
}
