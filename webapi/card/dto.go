package card

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/domain/card"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/shopspring/decimal"
)

type CreateCardRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	BillingAddress string          `json:"billing_address" validate:"max=200"`
	PIN            string          `json:"pin" validate:"required,len=4,numeric"`
	Currency       string          `json:"currency" validate:"required,len=3,alpha"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CardResponse struct {
	ID             string      `json:"id"`
	Number         string      `json:"number"`
	Holder         string      `json:"holder"`
	Balance        money.Money `json:"balance"`
	BillingAddress string      `json:"billing_address,omitempty"`
	ExpiresAt      time.Time   `json:"expires_at"`
	CreatedAt      time.Time   `json:"created_at"`
}

// IssuedCardResponse is returned once, on creation, and carries the full
// number and CVV.
type IssuedCardResponse struct {
	CardResponse
	CVV string `json:"cvv"`
}

func ToCardResponse(c *card.Card) CardResponse {
	return CardResponse{
		ID:             c.ID.String(),
		Number:         c.MaskedNumber(),
		Holder:         c.Holder,
		Balance:        c.Balance,
		BillingAddress: c.BillingAddress,
		ExpiresAt:      c.ExpiresAt,
		CreatedAt:      c.CreatedAt,
	}
}

func toIssuedCardResponse(c *card.Card) IssuedCardResponse {
	resp := IssuedCardResponse{CardResponse: ToCardResponse(c), CVV: c.CVV}
	resp.Number = c.Number
	return resp
}
