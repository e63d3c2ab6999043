// Package app wires the services of the banking backend from its
// infrastructure dependencies and configuration.
package app

import (
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/amirasaad/lendrix/pkg/repository"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/amirasaad/lendrix/pkg/service/auth"
	cardsvc "github.com/amirasaad/lendrix/pkg/service/card"
	"github.com/amirasaad/lendrix/pkg/service/exchange"
	"github.com/amirasaad/lendrix/pkg/service/limit"
	"github.com/amirasaad/lendrix/pkg/service/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/service/user"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow          repository.UnitOfWork
	Numbers      account.NumberGenerator
	ExchangeRate provider.ExchangeRate
	CardNumbers  cardsvc.NumberSource
	EventBus     eventbus.Bus
	Logger       *slog.Logger
	// Now overrides the clock of the fraud limit guard.
	Now func() time.Time
}

type App struct {
	Deps                *Deps
	Config              *config.App
	AuthService         *auth.Service
	UserService         *user.Service
	AccountService      *accountsvc.Service
	ExchangeService     *exchange.Service
	CardService         *cardsvc.Service
	MoneyRequestService *moneyrequest.Service
	LimitService        *limit.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	guard := limit.NewGuard(cfg.Limits, deps.Now)
	app.AuthService = auth.New(deps.Uow, cfg.Auth.Jwt, deps.Logger)
	app.UserService = user.New(
		deps.Uow,
		deps.Numbers,
		currency.Code(cfg.Settlement.Currency),
		deps.EventBus,
		deps.Logger,
	)
	app.AccountService = accountsvc.New(accountsvc.Deps{
		Uow:      deps.Uow,
		Numbers:  deps.Numbers,
		Guard:    guard,
		Rates:    deps.ExchangeRate,
		EventBus: deps.EventBus,
		Logger:   deps.Logger,
	})
	app.ExchangeService = exchange.New(deps.Uow, deps.ExchangeRate, cfg.Fee, deps.EventBus, deps.Logger)
	app.CardService = cardsvc.New(deps.Uow, cfg.Card, deps.CardNumbers, deps.EventBus, deps.Logger)
	app.MoneyRequestService = moneyrequest.New(deps.Uow, cfg.Settlement, deps.EventBus, deps.Logger)
	app.LimitService = limit.New(deps.Uow, guard, deps.Logger)
	return app
}
