// Package card funds, tops up, spends from and removes a user's card. The
// card balance moves in lockstep with the user's account in the card's
// currency.
package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/card"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/repository"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/amirasaad/lendrix/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultMaxAttempts = 10

var (
	// ErrCardNumberExhausted is returned when no unused card number turned up
	// within the configured number of attempts.
	ErrCardNumberExhausted = domain.NewError(domain.ErrAlreadyExists, "Could not allocate a unique card number")
	ErrCardExists          = domain.NewError(domain.ErrAlreadyExists, "User already has a card")
	ErrCardNotFound        = domain.NewError(domain.ErrNotFound, "No card found for this user")
	// ErrCardAccountMissing means a card exists without its funding account.
	ErrCardAccountMissing = domain.NewError(domain.ErrInconsistentState, "No account matches the card currency")

	// errNumberTaken aborts a unit whose card insert hit the number index after
	// the number looked free.
	errNumberTaken = errors.New("card number taken at insert")
)

// NumberSource hands out candidate card numbers and CVVs.
type NumberSource interface {
	Number() (string, error)
	CVV() (string, error)
}

// Service provides card operations.
type Service struct {
	uow         repository.UnitOfWork
	numbers     NumberSource
	minFunding  decimal.Decimal
	maxAttempts int
	bus         eventbus.Bus
	logger      *slog.Logger
}

// New creates a card service. numbers defaults to a crypto/rand generator.
func New(
	uow repository.UnitOfWork,
	cfg *config.Card,
	numbers NumberSource,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	if numbers == nil {
		numbers = card.NewGenerator(nil)
	}
	s := &Service{
		uow:         uow,
		numbers:     numbers,
		minFunding:  decimal.NewFromInt(2),
		maxAttempts: defaultMaxAttempts,
		bus:         bus,
		logger:      logger,
	}
	if cfg != nil {
		s.minFunding = cfg.MinFunding
		if cfg.NumberMaxAttempts > 0 {
			s.maxAttempts = cfg.NumberMaxAttempts
		}
	}
	return s
}

func (s *Service) errMinFunding() error {
	return domain.Errorf(domain.ErrValidation, "Amount must be at least %s", s.minFunding.String())
}

// allocateNumber draws numbers until one is unused, giving up after
// maxAttempts draws.
func (s *Service) allocateNumber(ctx context.Context, cards repository.CardRepository) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number, err := s.numbers.Number()
		if err != nil {
			return "", fmt.Errorf("generate card number: %w", err)
		}
		taken, err := cards.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
		s.logger.Warn("card number collision", "attempt", attempt)
	}
	return "", ErrCardNumberExhausted
}

func recordCardTransaction(
	ctx context.Context,
	txs repository.TransactionRepository,
	t account.TransactionType,
	c *card.Card,
	amount money.Money,
	description string,
) (*account.Transaction, error) {
	tx, err := account.NewTransaction(t).
		WithAmount(amount.Amount(), amount.Currency()).
		WithParties("Card", c.MaskedNumber()).
		WithOwner(c.UserID).
		ForCard(c.ID).
		WithDescription(description).
		Build()
	if err != nil {
		return nil, err
	}
	if err := txs.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record card transaction: %w", err)
	}
	return tx, nil
}

// CreateCard issues the user's card in currency code, funded with amount
// taken from the account in that currency.
func (s *Service) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	billingAddress string,
	pin string,
	code string,
) (c *card.Card, err error) {
	log := s.logger.With("user_id", userID, "currency", code, "amount", amount.String())
	log.Info("CreateCard started")
	defer func() {
		if err != nil {
			log.Error("CreateCard failed", "error", err)
		}
	}()

	if amount.LessThan(s.minFunding) {
		return nil, s.errMinFunding()
	}
	if err = card.ValidatePIN(pin); err != nil {
		return nil, err
	}
	parsed, err := currency.Parse(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	pinHash, err := utils.HashSecret(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	issue := func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		ledger, err := accountsvc.NewLedger(uow)
		if err != nil {
			return err
		}

		owner, err := users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := cards.GetByUser(ctx, userID); err == nil {
			return ErrCardExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		found, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, parsed)
		if err != nil {
			return domain.WhenNotFound(err, accountsvc.ErrAccountNotFound(parsed))
		}
		acc, err := ledger.Accounts().GetForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		funding, err := money.New(amount, parsed)
		if err != nil {
			return err
		}
		if err := acc.ValidateSufficientFunds(funding); err != nil {
			return err
		}
		if err := acc.Debit(funding); err != nil {
			return err
		}
		if err := ledger.Accounts().Update(ctx, acc); err != nil {
			return err
		}

		number, err := s.allocateNumber(ctx, cards)
		if err != nil {
			return err
		}
		cvv, err := s.numbers.CVV()
		if err != nil {
			return fmt.Errorf("generate cvv: %w", err)
		}
		c, err = card.New(card.Params{
			UserID:         userID,
			Number:         number,
			CVV:            cvv,
			Holder:         owner.FullName(),
			BillingAddress: billingAddress,
			PINHash:        pinHash,
			Funding:        funding,
		})
		if err != nil {
			return err
		}
		if err := cards.Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return errNumberTaken
			}
			return err
		}

		if _, err := ledger.CreateAccountTransaction(ctx, accountsvc.TransactionParams{
			Type:        account.TypeWithdraw,
			Owner:       userID,
			Account:     acc,
			Amount:      funding,
			Sender:      strconv.FormatInt(acc.Number, 10),
			Receiver:    c.MaskedNumber(),
			Description: "Card funding",
		}); err != nil {
			return err
		}
		_, err = recordCardTransaction(ctx, ledger.Transactions(), account.TypeCredit, c, funding, "Card funded")
		return err
	}

	// A concurrent issue can claim the number between the lookup and the
	// insert; the whole unit is rolled back and run again.
	for attempt := 1; ; attempt++ {
		err = s.uow.Do(ctx, issue)
		if !errors.Is(err, errNumberTaken) {
			break
		}
		if attempt >= s.maxAttempts {
			err = ErrCardNumberExhausted
			break
		}
		log.Warn("card number taken at insert, retrying", "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, log, events.CardIssued{
		Meta:         events.NewMeta(userID),
		CardID:       c.ID,
		MaskedNumber: c.MaskedNumber(),
		Funding:      c.Balance,
	})
	log.Info("CreateCard successful", "card_id", c.ID)
	return c, nil
}

// CreditCard adds amount to both the card and its account.
func (s *Service) CreditCard(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*account.Transaction, error) {
	return s.move(ctx, userID, amount, account.TypeCredit)
}

// DebitCard removes amount from both the card and its account. Either
// balance being short fails the whole operation.
func (s *Service) DebitCard(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*account.Transaction, error) {
	return s.move(ctx, userID, amount, account.TypeWithdraw)
}

func (s *Service) move(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	direction account.TransactionType,
) (cardTx *account.Transaction, err error) {
	op := "CreditCard"
	if direction == account.TypeWithdraw {
		op = "DebitCard"
	}
	log := s.logger.With("user_id", userID, "amount", amount.String())
	log.Info(op + " started")

	if !amount.IsPositive() {
		log.Error(op+" failed", "error", card.ErrAmountMustBePositive)
		return nil, card.ErrAmountMustBePositive
	}

	var c *card.Card
	var delta money.Money
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		ledger, err := accountsvc.NewLedger(uow)
		if err != nil {
			return err
		}
		c, err = cards.GetByUserForUpdate(ctx, userID)
		if err != nil {
			return domain.WhenNotFound(err, ErrCardNotFound)
		}
		found, err := ledger.Accounts().GetByUserAndCurrency(ctx, userID, c.Currency())
		if err != nil {
			return domain.WhenNotFound(err, ErrCardAccountMissing)
		}
		acc, err := ledger.Accounts().GetForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		delta, err = money.New(amount, c.Currency())
		if err != nil {
			return err
		}

		description := "Card credited"
		if direction == account.TypeWithdraw {
			description = "Card debited"
			if err := c.ValidateSufficientFunds(delta); err != nil {
				return err
			}
			if err := acc.ValidateSufficientFunds(delta); err != nil {
				return err
			}
			if err := c.Debit(delta); err != nil {
				return err
			}
			if err := acc.Debit(delta); err != nil {
				return err
			}
		} else {
			if err := c.Credit(delta); err != nil {
				return err
			}
			if err := acc.Credit(delta); err != nil {
				return err
			}
		}
		if err := cards.Update(ctx, c); err != nil {
			return err
		}
		if err := ledger.Accounts().Update(ctx, acc); err != nil {
			return err
		}
		if _, err := ledger.CreateAccountTransaction(ctx, accountsvc.TransactionParams{
			Type:        direction,
			Owner:       userID,
			Account:     acc,
			Amount:      delta,
			Sender:      c.MaskedNumber(),
			Receiver:    strconv.FormatInt(acc.Number, 10),
			Description: description,
		}); err != nil {
			return err
		}
		cardTx, err = recordCardTransaction(ctx, ledger.Transactions(), direction, c, delta, description)
		return err
	})
	if err != nil {
		log.Error(op+" failed", "error", err)
		return nil, err
	}

	signed := delta.Amount()
	if direction == account.TypeWithdraw {
		signed = signed.Neg()
	}
	eventbus.Publish(ctx, s.bus, log, events.CardBalanceChanged{
		Meta:    events.NewMeta(userID),
		CardID:  c.ID,
		Delta:   signed,
		Balance: c.Balance,
	})
	log.Info(op+" successful", "card_id", c.ID, "balance", c.Balance.String())
	return cardTx, nil
}

// GetCard returns the user's card.
func (s *Service) GetCard(ctx context.Context, userID uuid.UUID) (c *card.Card, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		c, err = cards.GetByUser(ctx, userID)
		return domain.WhenNotFound(err, ErrCardNotFound)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCardTransactions returns the card-side history of the user's card,
// newest first.
func (s *Service) ListCardTransactions(ctx context.Context, userID uuid.UUID) (txs []*account.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		c, err := cards.GetByUser(ctx, userID)
		if err != nil {
			return domain.WhenNotFound(err, ErrCardNotFound)
		}
		history, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = history.ListByCard(ctx, c.ID)
		return err
	})
	if err != nil {
		s.logger.Error("ListCardTransactions failed", "user_id", userID, "error", err)
		return nil, err
	}
	return txs, nil
}

// DeleteCard removes the user's card. Any balance left on the card is not
// moved back to the account; it is reported on the CardDeleted event.
func (s *Service) DeleteCard(ctx context.Context, userID uuid.UUID) (err error) {
	log := s.logger.With("user_id", userID)
	log.Info("DeleteCard started")

	var c *card.Card
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		c, err = cards.GetByUserForUpdate(ctx, userID)
		if err != nil {
			return domain.WhenNotFound(err, ErrCardNotFound)
		}
		return cards.Delete(ctx, c.ID)
	})
	if err != nil {
		log.Error("DeleteCard failed", "error", err)
		return err
	}
	if c.Balance.IsPositive() {
		log.Warn("card deleted with unreconciled balance", "card_id", c.ID, "balance", c.Balance.String())
	}
	eventbus.Publish(ctx, s.bus, log, events.CardDeleted{
		Meta:            events.NewMeta(userID),
		CardID:          c.ID,
		ResidualBalance: c.Balance,
	})
	log.Info("DeleteCard successful", "card_id", c.ID)
	return nil
}
