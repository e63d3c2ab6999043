package repository

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an AccountRepository bound to db, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) first(ctx context.Context, lock bool, query string, args ...any) (*account.Account, error) {
	var m Account
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where(query, args...).First(&m).Error; err != nil {
		return nil, notFound(err, "Account not found")
	}
	return accountFromModel(&m)
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(ctx, false, "id = ?", id)
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(ctx, true, "id = ?", id)
}

func (r *accountRepository) GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, code currency.Code) (*account.Account, error) {
	return r.first(ctx, false, "user_id = ? AND currency = ?", userID, string(code))
}

func (r *accountRepository) GetByNumber(ctx context.Context, number int64) (*account.Account, error) {
	return r.first(ctx, false, "number = ?", number)
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var ms []Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("currency").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		a, err := accountFromModel(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Account{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"balance":    a.Balance.Amount(),
				"updated_at": a.UpdatedAt,
			}).Error
	})
}

func accountToModel(a *account.Account) Account {
	return Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Currency:  string(a.Currency()),
		Number:    a.Number,
		Balance:   a.Balance.Amount(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func accountFromModel(m *Account) (*account.Account, error) {
	return account.New().
		WithID(m.ID).
		WithUserID(m.UserID).
		WithCurrency(currency.Code(m.Currency)).
		WithNumber(m.Number).
		WithBalance(m.Balance).
		WithCreatedAt(m.CreatedAt).
		WithUpdatedAt(m.UpdatedAt).
		Build()
}
