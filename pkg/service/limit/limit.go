// Package limit caps how much a user may transfer out over sliding windows.
package limit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DailyWindow  = 24 * time.Hour
	WeeklyWindow = 7 * 24 * time.Hour
)

var (
	ErrDailyLimitExceeded  = domain.NewError(domain.ErrLimitExceeded, "Daily transfer limit exceeded.")
	ErrWeeklyLimitExceeded = domain.NewError(domain.ErrLimitExceeded, "Weekly transfer limit exceeded.")
)

// Guard evaluates the daily and weekly caps against a transaction store.
// Windows end at the instant of the call.
type Guard struct {
	daily  decimal.Decimal
	weekly decimal.Decimal
	now    func() time.Time
}

// NewGuard creates a Guard. now defaults to time.Now.
func NewGuard(limits *config.Limits, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{daily: limits.Daily, weekly: limits.Weekly, now: now}
}

func (g *Guard) within(
	ctx context.Context,
	txs repository.TransactionRepository,
	userID uuid.UUID,
	amount decimal.Decimal,
	window time.Duration,
	ceiling decimal.Decimal,
) (bool, error) {
	since := g.now().UTC().Add(-window)
	sent, err := txs.SumOutgoingSince(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("sum outgoing transfers: %w", err)
	}
	return sent.Add(amount).LessThanOrEqual(ceiling), nil
}

// IsWithinDailyLimit reports whether amount fits under the daily cap.
func (g *Guard) IsWithinDailyLimit(
	ctx context.Context,
	txs repository.TransactionRepository,
	userID uuid.UUID,
	amount decimal.Decimal,
) (bool, error) {
	return g.within(ctx, txs, userID, amount, DailyWindow, g.daily)
}

// IsWithinWeeklyLimit reports whether amount fits under the weekly cap.
func (g *Guard) IsWithinWeeklyLimit(
	ctx context.Context,
	txs repository.TransactionRepository,
	userID uuid.UUID,
	amount decimal.Decimal,
) (bool, error) {
	return g.within(ctx, txs, userID, amount, WeeklyWindow, g.weekly)
}

// Check fails with a LimitExceeded error when either cap would be broken.
// The daily cap is checked first.
func (g *Guard) Check(
	ctx context.Context,
	txs repository.TransactionRepository,
	userID uuid.UUID,
	amount decimal.Decimal,
) error {
	ok, err := g.IsWithinDailyLimit(ctx, txs, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDailyLimitExceeded
	}
	ok, err = g.IsWithinWeeklyLimit(ctx, txs, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWeeklyLimitExceeded
	}
	return nil
}

// Service answers limit queries outside of a transfer.
type Service struct {
	uow    repository.UnitOfWork
	guard  *Guard
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, guard *Guard, logger *slog.Logger) *Service {
	return &Service{uow: uow, guard: guard, logger: logger}
}

func (s *Service) query(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	check func(context.Context, repository.TransactionRepository, uuid.UUID, decimal.Decimal) (bool, error),
) (ok bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		ok, err = check(ctx, txs, userID, amount)
		return err
	})
	return
}

// IsWithinDailyLimit runs the daily check in its own unit of work.
func (s *Service) IsWithinDailyLimit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	ok, err := s.query(ctx, userID, amount, s.guard.IsWithinDailyLimit)
	if err != nil {
		s.logger.Error("IsWithinDailyLimit failed", "user_id", userID, "error", err)
	}
	return ok, err
}

// IsWithinWeeklyLimit runs the weekly check in its own unit of work.
func (s *Service) IsWithinWeeklyLimit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	ok, err := s.query(ctx, userID, amount, s.guard.IsWithinWeeklyLimit)
	if err != nil {
		s.logger.Error("IsWithinWeeklyLimit failed", "user_id", userID, "error", err)
	}
	return ok, err
}
