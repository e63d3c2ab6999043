package repository

import (
	"context"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/card"
	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
// Lookups return domain.ErrNotFound when nothing matches. The ForUpdate
// variants take a row lock held until the surrounding unit of work ends.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, code currency.Code) (*account.Account, error)
	GetByNumber(ctx context.Context, number int64) (*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	// Update persists the balance.
	Update(ctx context.Context, a *account.Account) error
}

// CardRepository defines card persistence. A user has at most one card.
type CardRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*card.Card, error)
	GetByUserForUpdate(ctx context.Context, userID uuid.UUID) (*card.Card, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, c *card.Card) error
	Update(ctx context.Context, c *card.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository is append-only: there is no Update or Delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *account.Transaction) error
	// SumOutgoingSince totals TRANSFER amounts owned by userID created at or after since.
	SumOutgoingSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error)
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*account.Transaction, error)
}

// MoneyRequestRepository persists money requests.
type MoneyRequestRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*moneyrequest.MoneyRequest, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*moneyrequest.MoneyRequest, error)
	Create(ctx context.Context, r *moneyrequest.MoneyRequest) error
	// Update persists status and resolution time.
	Update(ctx context.Context, r *moneyrequest.MoneyRequest) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*moneyrequest.MoneyRequest, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*moneyrequest.MoneyRequest, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	// GetForUpdate locks the user row; transfers use it to serialize limit checks per sender.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}
