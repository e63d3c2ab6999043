// Package moneyrequest lets a user ask another user for money and lets the
// recipient approve (paying out of their settlement-currency account) or
// reject the request.
package moneyrequest

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/repository"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides the money request workflow.
type Service struct {
	uow        repository.UnitOfWork
	settlement currency.Code
	bus        eventbus.Bus
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a money request service settling in cfg.Currency.
func New(
	uow repository.UnitOfWork,
	cfg *config.Settlement,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	settlement := currency.DefaultCurrency
	if cfg != nil && cfg.Currency != "" {
		settlement = currency.Code(cfg.Currency)
	}
	return &Service{
		uow:        uow,
		settlement: settlement,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

// SettlementCurrency is the currency requests are denominated and paid in.
func (s *Service) SettlementCurrency() currency.Code { return s.settlement }

// RequestMoney records a PENDING request from requesterUsername to
// recipientUsername.
func (s *Service) RequestMoney(
	ctx context.Context,
	requesterUsername, recipientUsername string,
	amount decimal.Decimal,
) (req *moneyrequest.MoneyRequest, err error) {
	log := s.logger.With("requester", requesterUsername, "recipient", recipientUsername, "amount", amount.String())
	log.Info("RequestMoney started")

	if !amount.IsPositive() {
		log.Error("RequestMoney failed", "error", moneyrequest.ErrAmountMustBePositive)
		return nil, moneyrequest.ErrAmountMustBePositive
	}
	value, err := money.New(amount, s.settlement)
	if err != nil {
		log.Error("RequestMoney failed", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		requests, err := uow.MoneyRequestRepository()
		if err != nil {
			return err
		}
		requester, err := users.GetByUsername(ctx, requesterUsername)
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Requester not found: %s", requesterUsername))
		}
		recipient, err := users.GetByUsername(ctx, recipientUsername)
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Recipient not found: %s", recipientUsername))
		}
		req, err = moneyrequest.New(
			moneyrequest.Party{ID: requester.ID, Username: requester.Username},
			moneyrequest.Party{ID: recipient.ID, Username: recipient.Username},
			value,
		)
		if err != nil {
			return err
		}
		return requests.Create(ctx, req)
	})
	if err != nil {
		log.Error("RequestMoney failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, log, events.MoneyRequested{
		Meta:        events.NewMeta(req.RequesterID),
		RequestID:   req.ID,
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
	})
	log.Info("RequestMoney successful", "request_id", req.ID)
	return req, nil
}

// RespondToRequest approves or rejects a PENDING request on behalf of
// actorID, who must be its recipient. Approval pays the requester from the
// recipient's settlement-currency account in the same unit of work; any
// failure leaves the request PENDING.
func (s *Service) RespondToRequest(
	ctx context.Context,
	requestID, actorID uuid.UUID,
	approve bool,
) (req *moneyrequest.MoneyRequest, err error) {
	log := s.logger.With("request_id", requestID, "actor_id", actorID, "approve", approve)
	log.Info("RespondToRequest started")

	var transfer *accountsvc.Transfer
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.MoneyRequestRepository()
		if err != nil {
			return err
		}
		req, err = requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := req.CanRespond(actorID); err != nil {
			return err
		}

		if !approve {
			if err := req.Reject(s.now().UTC()); err != nil {
				return err
			}
			return requests.Update(ctx, req)
		}

		ledger, err := accountsvc.NewLedger(uow)
		if err != nil {
			return err
		}
		code := req.Amount.Currency()
		payer, err := ledger.Accounts().GetByUserAndCurrency(ctx, req.RecipientID, code)
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Recipient has no %s account", code))
		}
		payee, err := ledger.Accounts().GetByUserAndCurrency(ctx, req.RequesterID, code)
		if err != nil {
			return domain.WhenNotFound(err,
				domain.Errorf(domain.ErrNotFound, "Requester has no %s account", code))
		}
		payer, payee, err = ledger.LockPair(ctx, payer.ID, payee.ID)
		if err != nil {
			return err
		}
		transfer, err = ledger.PerformTransfer(ctx, payer, payee, req.Amount, req.RecipientID)
		if err != nil {
			return err
		}
		if err := req.Approve(s.now().UTC()); err != nil {
			return err
		}
		return requests.Update(ctx, req)
	})
	if err != nil {
		log.Error("RespondToRequest failed", "error", err)
		return nil, err
	}

	published := []events.Event{events.MoneyRequestResolved{
		Meta:      events.NewMeta(actorID),
		RequestID: req.ID,
		Status:    string(req.Status),
	}}
	if transfer != nil {
		requestID := req.ID
		published = append(published, events.TransferCompleted{
			Meta:              events.NewMeta(actorID),
			SenderAccountID:   *transfer.Debit.AccountID,
			ReceiverAccountID: *transfer.Credit.AccountID,
			ReceiverUserID:    req.RequesterID,
			TransactionID:     transfer.Debit.ID,
			Amount:            req.Amount,
			MoneyRequestID:    &requestID,
		})
	}
	eventbus.Publish(ctx, s.bus, log, published...)
	log.Info("RespondToRequest successful", "status", req.Status)
	return req, nil
}

// GetRequestsForUser lists requests addressed to username, newest first.
func (s *Service) GetRequestsForUser(ctx context.Context, username string) ([]*moneyrequest.MoneyRequest, error) {
	return s.list(ctx, username, func(r repository.MoneyRequestRepository, id uuid.UUID) ([]*moneyrequest.MoneyRequest, error) {
		return r.ListByRecipient(ctx, id)
	})
}

// GetRequestsByUser lists requests made by username, newest first.
func (s *Service) GetRequestsByUser(ctx context.Context, username string) ([]*moneyrequest.MoneyRequest, error) {
	return s.list(ctx, username, func(r repository.MoneyRequestRepository, id uuid.UUID) ([]*moneyrequest.MoneyRequest, error) {
		return r.ListByRequester(ctx, id)
	})
}

func (s *Service) list(
	ctx context.Context,
	username string,
	query func(repository.MoneyRequestRepository, uuid.UUID) ([]*moneyrequest.MoneyRequest, error),
) (out []*moneyrequest.MoneyRequest, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		requests, err := uow.MoneyRequestRepository()
		if err != nil {
			return err
		}
		u, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		out, err = query(requests, u.ID)
		return err
	})
	if err != nil {
		s.logger.Error("listing money requests failed", "username", username, "error", err)
		return nil, err
	}
	return out, nil
}
