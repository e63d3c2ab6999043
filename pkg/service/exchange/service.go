// Package exchange converts money between two of a user's own accounts at
// the provider's current rate.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/amirasaad/lendrix/pkg/repository"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service handles currency exchange operations.
type Service struct {
	uow      repository.UnitOfWork
	provider provider.ExchangeRate
	feeRate  decimal.Decimal
	bus      eventbus.Bus
	logger   *slog.Logger
}

// New creates a new exchange service. fee may be nil for fee-free conversion.
func New(
	uow repository.UnitOfWork,
	rates provider.ExchangeRate,
	fee *config.Fee,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	feeRate := decimal.Zero
	if fee != nil {
		feeRate = fee.ConversionPercentage
	}
	return &Service{uow: uow, provider: rates, feeRate: feeRate, bus: bus, logger: logger}
}

// ConvertInput moves Amount (in FromCurrency) into the ToCurrency account.
type ConvertInput struct {
	FromCurrency string
	ToCurrency   string
	Amount       decimal.Decimal
}

// Rates returns the provider's current table.
func (s *Service) Rates(ctx context.Context) (*provider.RateTable, error) {
	table, err := s.provider.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rates: %w", err)
	}
	return table, nil
}

// Rate returns how many units of to one unit of from buys.
func (s *Service) Rate(ctx context.Context, from, to currency.Code) (decimal.Decimal, error) {
	table, err := s.Rates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return table.Rate(from, to)
}

func parsePair(in ConvertInput) (from, to currency.Code, err error) {
	from, err = currency.Parse(strings.ToUpper(strings.TrimSpace(in.FromCurrency)))
	if err != nil {
		return "", "", err
	}
	to, err = currency.Parse(strings.ToUpper(strings.TrimSpace(in.ToCurrency)))
	if err != nil {
		return "", "", err
	}
	if from == to {
		return "", "", accountsvc.ErrSameCurrencyConversion
	}
	return from, to, nil
}

// Convert debits the source account, credits the target account with the
// converted amount less the configured fee, and records one CONVERT
// transaction. The rate is fetched before the unit of work opens.
func (s *Service) Convert(
	ctx context.Context,
	userID uuid.UUID,
	in ConvertInput,
) (result *accountsvc.Conversion, err error) {
	log := s.logger.With(
		"user_id", userID,
		"from", in.FromCurrency,
		"to", in.ToCurrency,
		"amount", in.Amount.String(),
	)
	log.Info("Convert started")

	if !in.Amount.IsPositive() {
		log.Error("Convert failed", "error", account.ErrAmountMustBePositive)
		return nil, account.ErrAmountMustBePositive
	}
	from, to, err := parsePair(in)
	if err != nil {
		log.Error("Convert failed", "error", err)
		return nil, err
	}
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		log.Error("Convert failed", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := accountsvc.NewLedger(uow)
		if err != nil {
			return err
		}
		src, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, from)
		if err != nil {
			return domain.WhenNotFound(err, accountsvc.ErrAccountNotFound(from))
		}
		dst, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, to)
		if err != nil {
			return domain.WhenNotFound(err, accountsvc.ErrAccountNotFound(to))
		}
		src, dst, err = ledger.LockPair(ctx, src.ID, dst.ID)
		if err != nil {
			return err
		}
		amount, err := money.New(in.Amount, from)
		if err != nil {
			return err
		}
		result, err = ledger.ConvertCurrency(ctx, userID, src, dst, amount, rate, s.feeRate)
		return err
	})
	if err != nil {
		log.Error("Convert failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, log, events.CurrencyConverted{
		Meta:          events.NewMeta(userID),
		TransactionID: result.Transaction.ID,
		From:          result.Debited,
		To:            result.Credited,
		Rate:          result.Rate,
		Fee:           result.Fee,
	})
	log.Info("Convert successful",
		"rate", rate.String(),
		"credited", result.Credited.String(),
		"fee", result.Fee.String(),
	)
	return result, nil
}
