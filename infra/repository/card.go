package repository

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/card"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) byUser(ctx context.Context, userID uuid.UUID, lock bool) (*card.Card, error) {
	var m Card
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, notFound(err, "No card found for this user")
	}
	return cardFromModel(&m)
}

func (r *cardRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*card.Card, error) {
	return r.byUser(ctx, userID, false)
}

func (r *cardRepository) GetByUserForUpdate(ctx context.Context, userID uuid.UUID) (*card.Card, error) {
	return r.byUser(ctx, userID, true)
}

func (r *cardRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Card{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func (r *cardRepository) Create(ctx context.Context, c *card.Card) error {
	m := cardToModel(c)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *cardRepository) Update(ctx context.Context, c *card.Card) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Card{}).
			Where("id = ?", c.ID).
			Updates(map[string]any{
				"balance":    c.Balance.Amount(),
				"updated_at": c.UpdatedAt,
			}).Error
	})
}

func (r *cardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Card{}, "id = ?", id)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "No card found for this user")
	}
	return nil
}

func cardToModel(c *card.Card) Card {
	return Card{
		ID:             c.ID,
		UserID:         c.UserID,
		Number:         c.Number,
		Holder:         c.Holder,
		Balance:        c.Balance.Amount(),
		Currency:       string(c.Currency()),
		BillingAddress: c.BillingAddress,
		PINHash:        c.PINHash,
		CVV:            c.CVV,
		ExpiresAt:      c.ExpiresAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func cardFromModel(m *Card) (*card.Card, error) {
	bal, err := money.New(m.Balance, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &card.Card{
		ID:             m.ID,
		UserID:         m.UserID,
		Number:         m.Number,
		Holder:         m.Holder,
		Balance:        bal,
		BillingAddress: m.BillingAddress,
		PINHash:        m.PINHash,
		CVV:            m.CVV,
		ExpiresAt:      m.ExpiresAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}
