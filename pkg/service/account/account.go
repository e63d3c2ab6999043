// Package account provides the ledger engine: account creation, transfers,
// deposits and the read side of balances and history.
//
// Every public operation runs in exactly one unit of work; domain events are
// published only after it commits.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/amirasaad/lendrix/pkg/service/limit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deps holds what the account service needs.
type Deps struct {
	Uow      repository.UnitOfWork
	Numbers  account.NumberGenerator
	Guard    *limit.Guard
	Rates    provider.ExchangeRate
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

// Service provides business logic for account operations.
type Service struct {
	uow     repository.UnitOfWork
	numbers account.NumberGenerator
	guard   *limit.Guard
	rates   provider.ExchangeRate
	bus     eventbus.Bus
	logger  *slog.Logger
}

// New creates a new Service with the provided dependencies.
func New(deps Deps) *Service {
	return &Service{
		uow:     deps.Uow,
		numbers: deps.Numbers,
		guard:   deps.Guard,
		rates:   deps.Rates,
		bus:     deps.EventBus,
		logger:  deps.Logger,
	}
}

// Open creates a zero-balance account for userID in code using accounts from
// the caller's unit of work. A second account in the same currency fails
// with an AlreadyExists error.
func Open(
	ctx context.Context,
	accounts repository.AccountRepository,
	numbers account.NumberGenerator,
	userID uuid.UUID,
	code currency.Code,
) (*account.Account, error) {
	_, err := accounts.GetByUserAndCurrency(ctx, userID, code)
	if err == nil {
		return nil, domain.Errorf(domain.ErrAlreadyExists, "%s account already exists", code)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	a, err := account.New().
		WithUserID(userID).
		WithCurrency(code).
		WithNumber(numbers.Next()).
		Build()
	if err != nil {
		return nil, err
	}
	if err := accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AccountCreatedEvent describes a freshly opened account.
func AccountCreatedEvent(a *account.Account) events.AccountCreated {
	return events.AccountCreated{
		Meta:      events.NewMeta(a.UserID),
		AccountID: a.ID,
		Number:    a.Number,
		Currency:  a.Currency().String(),
	}
}

// CreateAccount opens a new account in currency code for userID.
func (s *Service) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	code string,
) (a *account.Account, err error) {
	log := s.logger.With("user_id", userID, "currency", code)
	log.Info("CreateAccount started")

	parsed, err := currency.Parse(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		log.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = Open(ctx, accounts, s.numbers, userID, parsed)
		return err
	})
	if err != nil {
		log.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	eventbus.Publish(ctx, s.bus, log, AccountCreatedEvent(a))
	log.Info("CreateAccount successful", "account_id", a.ID, "number", a.Number)
	return a, nil
}

// TransferInput is a request to move money from one of the caller's
// accounts to any account identified by number.
type TransferInput struct {
	SenderCode             string
	RecipientAccountNumber string
	Amount                 decimal.Decimal
}

// Transfer runs the fraud limit guard and moves the money in one unit of
// work. The sender's user row is locked first so concurrent transfers of the
// same user see each other's totals.
func (s *Service) Transfer(
	ctx context.Context,
	userID uuid.UUID,
	in TransferInput,
) (result *Transfer, err error) {
	log := s.logger.With("user_id", userID, "sender_code", in.SenderCode, "amount", in.Amount.String())
	log.Info("Transfer started")

	recipientNumber, err := strconv.ParseInt(strings.TrimSpace(in.RecipientAccountNumber), 10, 64)
	if err != nil {
		log.Error("Transfer failed", "error", ErrRecipientNumber)
		return nil, ErrRecipientNumber
	}

	var sender, receiver *account.Account
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		ledger, err := NewLedger(uow)
		if err != nil {
			return err
		}
		src, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, currency.Code(strings.ToUpper(in.SenderCode)))
		if err != nil {
			return domain.WhenNotFound(err, ErrSenderNotFound)
		}
		dst, err := ledger.Accounts().GetByNumber(ctx, recipientNumber)
		if err != nil {
			return domain.WhenNotFound(err, ErrReceiverNotFound)
		}
		sender, receiver, err = ledger.LockPair(ctx, src.ID, dst.ID)
		if err != nil {
			return err
		}

		amount, err := money.New(in.Amount, sender.Currency())
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return account.ErrAmountMustBePositive
		}
		if err := s.guardCheck(ctx, ledger, userID, amount); err != nil {
			return err
		}
		result, err = ledger.PerformTransfer(ctx, sender, receiver, amount, userID)
		return err
	})
	if err != nil {
		log.Error("Transfer failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, log, events.TransferCompleted{
		Meta:              events.NewMeta(userID),
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		ReceiverUserID:    receiver.UserID,
		TransactionID:     result.Debit.ID,
		Amount:            money.Must(money.New(result.Debit.Amount, result.Debit.Currency)),
	})
	log.Info("Transfer successful", "transaction_id", result.Debit.ID)
	return result, nil
}

func (s *Service) guardCheck(ctx context.Context, ledger *Ledger, userID uuid.UUID, amount money.Money) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Check(ctx, ledger.Transactions(), userID, amount.Amount())
}

// DepositInput is a manual top-up of one of the caller's accounts.
type DepositInput struct {
	AccountCode   string
	Amount        decimal.Decimal
	PaymentMethod string
}

// Deposit credits an account with money entering from outside the ledger.
func (s *Service) Deposit(
	ctx context.Context,
	userID uuid.UUID,
	in DepositInput,
) (tx *account.Transaction, err error) {
	log := s.logger.With("user_id", userID, "account_code", in.AccountCode, "amount", in.Amount.String())
	log.Info("Deposit started")

	var acc *account.Account
	var amount money.Money
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := NewLedger(uow)
		if err != nil {
			return err
		}
		code := currency.Code(strings.ToUpper(in.AccountCode))
		found, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, code)
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Account not found for code: %s", in.AccountCode))
		}
		if !in.Amount.IsPositive() {
			return ErrDepositAmount
		}
		acc, err = ledger.Accounts().GetForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		amount, err = money.New(in.Amount, acc.Currency())
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return ErrDepositAmount
		}
		if err := acc.Credit(amount); err != nil {
			return err
		}
		if err := ledger.Accounts().Update(ctx, acc); err != nil {
			return err
		}
		description := "Manual deposit"
		if in.PaymentMethod != "" {
			description = "Deposit via " + in.PaymentMethod
		}
		tx, err = ledger.CreateAccountTransaction(ctx, TransactionParams{
			Type:        account.TypeDeposit,
			Owner:       userID,
			Account:     acc,
			Amount:      amount,
			Sender:      account.ExternalParty,
			Receiver:    acc.Currency().String(),
			Description: description,
		})
		return err
	})
	if err != nil {
		log.Error("Deposit failed", "error", err)
		return nil, err
	}
	eventbus.Publish(ctx, s.bus, log, events.DepositCompleted{
		Meta:          events.NewMeta(userID),
		AccountID:     acc.ID,
		TransactionID: tx.ID,
		Amount:        amount,
		Method:        in.PaymentMethod,
	})
	log.Info("Deposit successful", "transaction_id", tx.ID, "balance", acc.Balance.String())
	return tx, nil
}

// ListAccounts returns the user's accounts ordered by currency.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) (accounts []*account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accounts, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("ListAccounts failed", "user_id", userID, "error", err)
		return nil, err
	}
	return accounts, nil
}

// ListTransactions returns the transactions owned by userID, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) (txs []*account.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("ListTransactions failed", "user_id", userID, "error", err)
		return nil, err
	}
	return txs, nil
}

// ListAccountTransactions returns the history of the caller's account in
// code, newest first.
func (s *Service) ListAccountTransactions(
	ctx context.Context,
	userID uuid.UUID,
	code string,
) (txs []*account.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := NewLedger(uow)
		if err != nil {
			return err
		}
		acc, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, currency.Code(strings.ToUpper(code)))
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Account not found for code: %s", code))
		}
		txs, err = ledger.Transactions().ListByAccount(ctx, acc.ID)
		return err
	})
	if err != nil {
		s.logger.Error("ListAccountTransactions failed", "user_id", userID, "account_code", code, "error", err)
		return nil, err
	}
	return txs, nil
}

// GetRates returns the provider's current rate table.
func (s *Service) GetRates(ctx context.Context) (*provider.RateTable, error) {
	table, err := s.rates.Rates(ctx)
	if err != nil {
		s.logger.Error("GetRates failed", "provider", s.rates.Name(), "error", err)
		return nil, err
	}
	return table, nil
}
