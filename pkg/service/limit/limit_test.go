package limit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/amirasaad/lendrix/pkg/service/limit"
	"github.com/amirasaad/lendrix/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) SumOutgoingSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Transaction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*account.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*account.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*account.Transaction, error) {
	args := m.Called(ctx, cardID)
	return args.Get(0).([]*account.Transaction), args.Error(1)
}

var (
	fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	limits   = &config.Limits{
		Daily:  decimal.RequireFromString("2000.00"),
		Weekly: decimal.RequireFromString("10000.00"),
	}
)

func TestMain(m *testing.M) { testutils.Main(m) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newGuard() *limit.Guard {
	return limit.NewGuard(limits, func() time.Time { return fixedNow })
}

func TestGuard_IsWithinDailyLimit(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name   string
		sent   string
		amount string
		want   bool
	}{
		{"nothing sent yet", "0", "100.00", true},
		{"lands exactly on the cap", "1500.00", "500.00", true},
		{"one cent over", "1500.00", "500.01", false},
		{"single transfer over the cap", "0", "2000.01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := new(MockTransactionRepository)
			txs.On("SumOutgoingSince", mock.Anything, userID, fixedNow.Add(-limit.DailyWindow)).
				Return(d(tt.sent), nil).Once()

			ok, err := newGuard().IsWithinDailyLimit(context.Background(), txs, userID, d(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			txs.AssertExpectations(t)
		})
	}
}

func TestGuard_IsWithinWeeklyLimit(t *testing.T) {
	userID := uuid.New()
	txs := new(MockTransactionRepository)
	txs.On("SumOutgoingSince", mock.Anything, userID, fixedNow.Add(-limit.WeeklyWindow)).
		Return(d("9900.00"), nil)

	ok, err := newGuard().IsWithinWeeklyLimit(context.Background(), txs, userID, d("100.00"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newGuard().IsWithinWeeklyLimit(context.Background(), txs, userID, d("100.01"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_Check(t *testing.T) {
	userID := uuid.New()
	daily := fixedNow.Add(-limit.DailyWindow)
	weekly := fixedNow.Add(-limit.WeeklyWindow)

	t.Run("daily cap reported first", func(t *testing.T) {
		txs := new(MockTransactionRepository)
		txs.On("SumOutgoingSince", mock.Anything, userID, daily).Return(d("2000.00"), nil).Once()

		err := newGuard().Check(context.Background(), txs, userID, d("0.01"))
		assert.ErrorIs(t, err, limit.ErrDailyLimitExceeded)
		assert.ErrorIs(t, err, domain.ErrLimitExceeded)
		txs.AssertNotCalled(t, "SumOutgoingSince", mock.Anything, userID, weekly)
	})

	t.Run("weekly cap", func(t *testing.T) {
		txs := new(MockTransactionRepository)
		txs.On("SumOutgoingSince", mock.Anything, userID, daily).Return(d("100.00"), nil).Once()
		txs.On("SumOutgoingSince", mock.Anything, userID, weekly).Return(d("9950.00"), nil).Once()

		err := newGuard().Check(context.Background(), txs, userID, d("100.00"))
		assert.ErrorIs(t, err, limit.ErrWeeklyLimitExceeded)
		txs.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		txs := new(MockTransactionRepository)
		txs.On("SumOutgoingSince", mock.Anything, userID, daily).
			Return(decimal.Zero, errors.New("connection reset")).Once()

		err := newGuard().Check(context.Background(), txs, userID, d("1.00"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestService_AgainstStoredTransfers(t *testing.T) {
	env := testutils.NewEnv(t)
	clock := testutils.NewClock(time.Now().UTC())
	alice := env.SeedUser(t, "alice")
	usd := env.SeedAccount(t, alice.ID, "USD", "5000.00")

	transfer, err := account.NewTransaction(account.TypeTransfer).
		WithAmount(d("1500.00"), "USD").
		WithOwner(alice.ID).
		ForAccount(usd.ID).
		WithParties("1", "2").
		WithCreatedAt(clock.Now().Add(-2 * time.Hour)).
		Build()
	require.NoError(t, err)
	require.NoError(t, env.Uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Create(context.Background(), transfer)
	}))

	svc := limit.New(env.Uow, limit.NewGuard(env.Config.Limits, clock.Now), env.Logger)

	ok, err := svc.IsWithinDailyLimit(context.Background(), alice.ID, d("500.00"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsWithinDailyLimit(context.Background(), alice.ID, d("500.01"))
	require.NoError(t, err)
	assert.False(t, ok)

	// the transfer leaves the daily window but stays in the weekly one
	clock.Advance(23 * time.Hour)
	ok, err = svc.IsWithinDailyLimit(context.Background(), alice.ID, d("2000.00"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsWithinWeeklyLimit(context.Background(), alice.ID, d("8500.01"))
	require.NoError(t, err)
	assert.False(t, ok)
}
