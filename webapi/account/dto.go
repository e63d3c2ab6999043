package account

import (
	"strconv"
	"time"

	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/money"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

// DepositRequest represents the request body for depositing funds.
type DepositRequest struct {
	AccountCode   string          `json:"account_code" validate:"required,len=3,alpha"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"max=50"`
}

// TransferRequest moves money to another user's account by account number.
type TransferRequest struct {
	SenderCode             string          `json:"sender_code" validate:"required,len=3,alpha"`
	RecipientAccountNumber string          `json:"recipient_account_number" validate:"required,numeric"`
	Amount                 decimal.Decimal `json:"amount"`
}

// ConvertRequest moves money between two of the caller's own accounts.
type ConvertRequest struct {
	FromCurrency string          `json:"from_currency" validate:"required,len=3,alpha"`
	ToCurrency   string          `json:"to_currency" validate:"required,len=3,alpha"`
	Amount       decimal.Decimal `json:"amount"`
}

type AccountResponse struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	Currency  string      `json:"currency"`
	Balance   money.Money `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
}

type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Currency    string          `json:"currency"`
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	AccountID   *string         `json:"account_id,omitempty"`
	CardID      *string         `json:"card_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TransferResponse struct {
	Transaction TransactionResponse `json:"transaction"`
}

type ConversionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Debited     money.Money         `json:"debited"`
	Credited    money.Money         `json:"credited"`
	Fee         money.Money         `json:"fee"`
	Rate        decimal.Decimal     `json:"rate"`
}

func ToAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		Number:    strconv.FormatInt(a.Number, 10),
		Currency:  a.Currency().String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

func ToTransactionResponse(tx *account.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID.String(),
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		Amount:      tx.Amount,
		Fee:         tx.Fee,
		Currency:    tx.Currency.String(),
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
	if tx.AccountID != nil {
		id := tx.AccountID.String()
		resp.AccountID = &id
	}
	if tx.CardID != nil {
		id := tx.CardID.String()
		resp.CardID = &id
	}
	return resp
}

func ToTransactionResponses(txs []*account.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, ToTransactionResponse(tx))
	}
	return resp
}

func toConversionResponse(c *accountsvc.Conversion) ConversionResponse {
	return ConversionResponse{
		Transaction: ToTransactionResponse(c.Transaction),
		Debited:     c.Debited,
		Credited:    c.Credited,
		Fee:         c.Fee,
		Rate:        c.Rate,
	}
}
