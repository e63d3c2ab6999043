package repository

import (
	"context"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// sumScale matches the numeric(20,4) column scale.
const sumScale = 4

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := transactionToModel(tx)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *transactionRepository) SumOutgoingSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Select("SUM(amount) AS total").
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, string(account.TypeTransfer), since.UTC()).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, MapGormErrorToDomain(err)
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal.Round(sumScale), nil
}

func (r *transactionRepository) list(ctx context.Context, query string, arg any) ([]*account.Transaction, error) {
	var ms []Transaction
	if err := r.db.WithContext(ctx).Where(query, arg).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionFromModel(&ms[i]))
	}
	return out, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Transaction, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	return r.list(ctx, "account_id = ?", accountID)
}

func (r *transactionRepository) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*account.Transaction, error) {
	return r.list(ctx, "card_id = ?", cardID)
}

func transactionToModel(tx *account.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Fee:         tx.Fee,
		Currency:    string(tx.Currency),
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Status:      string(tx.Status),
		UserID:      tx.UserID,
		AccountID:   tx.AccountID,
		CardID:      tx.CardID,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.UTC(),
	}
}

func transactionFromModel(m *Transaction) *account.Transaction {
	return &account.Transaction{
		ID:          m.ID,
		Type:        account.TransactionType(m.Type),
		Amount:      m.Amount,
		Fee:         m.Fee,
		Currency:    currency.Code(m.Currency),
		Sender:      m.Sender,
		Receiver:    m.Receiver,
		Status:      account.TransactionStatus(m.Status),
		UserID:      m.UserID,
		AccountID:   m.AccountID,
		CardID:      m.CardID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
