// Package user registers users and looks them up.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/repository"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/amirasaad/lendrix/pkg/utils"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Service provides business logic for user operations.
type Service struct {
	uow             repository.UnitOfWork
	numbers         account.NumberGenerator
	defaultCurrency currency.Code
	bus             eventbus.Bus
	logger          *slog.Logger
}

// New creates a new Service. defaultCurrency is used for the first account
// when a registration names none.
func New(
	uow repository.UnitOfWork,
	numbers account.NumberGenerator,
	defaultCurrency currency.Code,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	if defaultCurrency == "" {
		defaultCurrency = currency.DefaultCurrency
	}
	return &Service{
		uow:             uow,
		numbers:         numbers,
		defaultCurrency: defaultCurrency,
		bus:             bus,
		logger:          logger,
	}
}

// RegisterInput is what a new user supplies.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	Firstname       string
	Lastname        string
	DOB             time.Time
	AccountCurrency string
}

// Registration is a new user together with their first account.
type Registration struct {
	User    *user.User
	Account *account.Account
}

// Register creates the user and their first account in one unit of work.
func (s *Service) Register(ctx context.Context, in RegisterInput) (reg *Registration, err error) {
	log := s.logger.With("username", in.Username, "account_currency", in.AccountCurrency)
	log.Info("Register started")

	code := s.defaultCurrency
	if c := strings.TrimSpace(in.AccountCurrency); c != "" {
		code, err = currency.Parse(strings.ToUpper(c))
		if err != nil {
			log.Error("Register failed", "error", err)
			return nil, err
		}
	}
	if len(in.Password) < MinPasswordLength {
		err = domain.Errorf(domain.ErrValidation, "password must be at least %d characters", MinPasswordLength)
		log.Error("Register failed", "error", err)
		return nil, err
	}
	hash, err := utils.HashSecret(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := user.New(user.Profile{
		Username:  in.Username,
		Email:     in.Email,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		DOB:       in.DOB,
	}, hash)
	if err != nil {
		log.Error("Register failed", "error", err)
		return nil, err
	}

	reg = &Registration{User: u}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := users.Create(ctx, u); err != nil {
			return domain.WhenAlreadyExists(err,
				domain.NewError(domain.ErrAlreadyExists, "username or email already taken"))
		}
		reg.Account, err = accountsvc.Open(ctx, accounts, s.numbers, u.ID, code)
		return err
	})
	if err != nil {
		log.Error("Register failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, log,
		events.UserRegistered{Meta: events.NewMeta(u.ID), Username: u.Username},
		accountsvc.AccountCreatedEvent(reg.Account),
	)
	log.Info("Register successful", "user_id", u.ID, "account_number", reg.Account.Number)
	return reg, nil
}

// GetByUsername looks a user up by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser looks a user up by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
