package repository

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type moneyRequestRepository struct {
	db *gorm.DB
}

func NewMoneyRequestRepository(db *gorm.DB) repository.MoneyRequestRepository {
	return &moneyRequestRepository{db: db}
}

func (r *moneyRequestRepository) get(ctx context.Context, id uuid.UUID, lock bool) (*moneyrequest.MoneyRequest, error) {
	var m MoneyRequest
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "Money request not found")
	}
	return moneyRequestFromModel(&m)
}

func (r *moneyRequestRepository) Get(ctx context.Context, id uuid.UUID) (*moneyrequest.MoneyRequest, error) {
	return r.get(ctx, id, false)
}

func (r *moneyRequestRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*moneyrequest.MoneyRequest, error) {
	return r.get(ctx, id, true)
}

func (r *moneyRequestRepository) Create(ctx context.Context, mr *moneyrequest.MoneyRequest) error {
	m := moneyRequestToModel(mr)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *moneyRequestRepository) Update(ctx context.Context, mr *moneyrequest.MoneyRequest) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Model(&MoneyRequest{}).
			Where("id = ?", mr.ID).
			Updates(map[string]any{
				"status":      string(mr.Status),
				"resolved_at": mr.ResolvedAt,
			}).Error
	})
}

func (r *moneyRequestRepository) list(ctx context.Context, column string, id uuid.UUID) ([]*moneyrequest.MoneyRequest, error) {
	var ms []MoneyRequest
	if err := r.db.WithContext(ctx).Where(column+" = ?", id).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*moneyrequest.MoneyRequest, 0, len(ms))
	for i := range ms {
		mr, err := moneyRequestFromModel(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, nil
}

func (r *moneyRequestRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*moneyrequest.MoneyRequest, error) {
	return r.list(ctx, "recipient_id", recipientID)
}

func (r *moneyRequestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*moneyrequest.MoneyRequest, error) {
	return r.list(ctx, "requester_id", requesterID)
}

func moneyRequestToModel(mr *moneyrequest.MoneyRequest) MoneyRequest {
	return MoneyRequest{
		ID:                mr.ID,
		RequesterID:       mr.RequesterID,
		RequesterUsername: mr.RequesterUsername,
		RecipientID:       mr.RecipientID,
		RecipientUsername: mr.RecipientUsername,
		Amount:            mr.Amount.Amount(),
		Currency:          string(mr.Amount.Currency()),
		Status:            string(mr.Status),
		CreatedAt:         mr.CreatedAt,
		ResolvedAt:        mr.ResolvedAt,
	}
}

func moneyRequestFromModel(m *MoneyRequest) (*moneyrequest.MoneyRequest, error) {
	amount, err := money.New(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &moneyrequest.MoneyRequest{
		ID:                m.ID,
		RequesterID:       m.RequesterID,
		RequesterUsername: m.RequesterUsername,
		RecipientID:       m.RecipientID,
		RecipientUsername: m.RecipientUsername,
		Amount:            amount,
		Status:            moneyrequest.Status(m.Status),
		CreatedAt:         m.CreatedAt,
		ResolvedAt:        m.ResolvedAt,
	}, nil
}
