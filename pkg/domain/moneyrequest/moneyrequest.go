// Package moneyrequest models a peer asking another user for money.
//
// State machine: PENDING -> APPROVED | REJECTED. Both targets are terminal.
package moneyrequest

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
)

// Status of a money request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrAlreadyProcessed     = domain.NewError(domain.ErrInvalidStateTransition, "This request has already been processed")
	ErrAmountMustBePositive = domain.NewError(domain.ErrValidation, "Amount must be greater than 0")
	ErrSelfRequest          = domain.NewError(domain.ErrValidation, "Cannot request money from yourself")
	ErrNotRecipient         = domain.NewError(domain.ErrForbidden, "Only the recipient can respond to this request")
)

// MoneyRequest asks Recipient to pay Requester.
type MoneyRequest struct {
	ID                uuid.UUID
	RequesterID       uuid.UUID
	RequesterUsername string
	RecipientID       uuid.UUID
	RecipientUsername string
	Amount            money.Money
	Status            Status
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// Party identifies one side of a request.
type Party struct {
	ID       uuid.UUID
	Username string
}

// New creates a PENDING request.
func New(requester, recipient Party, amount money.Money) (*MoneyRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	if requester.ID == recipient.ID {
		return nil, ErrSelfRequest
	}
	return &MoneyRequest{
		ID:                uuid.New(),
		RequesterID:       requester.ID,
		RequesterUsername: requester.Username,
		RecipientID:       recipient.ID,
		RecipientUsername: recipient.Username,
		Amount:            amount,
		Status:            StatusPending,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// IsPending reports whether the request still awaits a response.
func (r *MoneyRequest) IsPending() bool { return r.Status == StatusPending }

// CanRespond checks that actor may respond and that the request is still open.
func (r *MoneyRequest) CanRespond(actor uuid.UUID) error {
	if actor != r.RecipientID {
		return ErrNotRecipient
	}
	if !r.IsPending() {
		return ErrAlreadyProcessed
	}
	return nil
}

// Approve moves PENDING to APPROVED.
func (r *MoneyRequest) Approve(at time.Time) error {
	return r.resolve(StatusApproved, at)
}

// Reject moves PENDING to REJECTED.
func (r *MoneyRequest) Reject(at time.Time) error {
	return r.resolve(StatusRejected, at)
}

func (r *MoneyRequest) resolve(to Status, at time.Time) error {
	if !r.IsPending() {
		return ErrAlreadyProcessed
	}
	r.Status = to
	r.ResolvedAt = &at
	return nil
}
