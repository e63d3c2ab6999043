package moneyrequest

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Recipient string          `json:"recipient" validate:"required,min=3,max=50"`
	Amount    decimal.Decimal `json:"amount"`
}

type RespondRequest struct {
	// Approve is a pointer so a missing field fails validation instead of
	// meaning reject.
	Approve *bool `json:"approve" validate:"required"`
}

type MoneyRequestResponse struct {
	ID         string      `json:"id"`
	Requester  string      `json:"requester"`
	Recipient  string      `json:"recipient"`
	Amount     money.Money `json:"amount"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}

func ToMoneyRequestResponse(r *moneyrequest.MoneyRequest) MoneyRequestResponse {
	return MoneyRequestResponse{
		ID:         r.ID.String(),
		Requester:  r.RequesterUsername,
		Recipient:  r.RecipientUsername,
		Amount:     r.Amount,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

func toResponses(reqs []*moneyrequest.MoneyRequest) []MoneyRequestResponse {
	resp := make([]MoneyRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		resp = append(resp, ToMoneyRequestResponse(r))
	}
	return resp
}
