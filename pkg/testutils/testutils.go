// Package testutils wires real infrastructure (in-memory SQLite, the GORM
// unit of work and the in-memory event bus) for service and handler tests.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/infra"
	infraeventbus "github.com/amirasaad/lendrix/infra/eventbus"
	infrarepo "github.com/amirasaad/lendrix/infra/repository"
	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/amirasaad/lendrix/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of every seeded user.
const Password = "password123"

// Main lowers the bcrypt cost for the test binary and runs it.
func Main(m *testing.M) {
	utils.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Config returns the configuration the defaults would produce, with a fixed
// JWT secret.
func Config() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text"},
		DB:     &config.DB{Driver: "sqlite", Url: ":memory:"},
		Auth:   &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		Limits: &config.Limits{
			Daily:  decimal.RequireFromString("2000.00"),
			Weekly: decimal.RequireFromString("10000.00"),
		},
		Settlement: &config.Settlement{Currency: "USD"},
		Card: &config.Card{
			MinFunding:        decimal.NewFromInt(2),
			NumberMaxAttempts: 10,
		},
		Fee:           &config.Fee{ConversionPercentage: decimal.Zero},
		ExchangeRate:  &config.ExchangeRate{Base: "USD", CacheTTL: time.Minute},
		Redis:         &config.Redis{KeyPrefix: "lendrix:"},
		Kafka:         &config.Kafka{TopicPrefix: "lendrix.events", GroupID: "lendrix"},
		EventBus:      &config.EventBus{Driver: "memory", Stream: "lendrix:events"},
		RateLimit:     &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		AccountNumber: &config.AccountNumber{Node: 1},
		Currency:      &config.Currency{},
	}
}

// Env is a fresh database with its unit of work and event bus.
type Env struct {
	DB      *gorm.DB
	Uow     *infrarepo.UoW
	Bus     *infraeventbus.MemoryEventBus
	Numbers account.NumberGenerator
	Config  *config.App
	Logger  *slog.Logger
}

// NewEnv opens an empty, fully migrated in-memory database.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	cfg := Config()
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	numbers, err := infra.NewAccountNumberGenerator(cfg.AccountNumber.Node)
	require.NoError(t, err)

	logger := Logger()
	return &Env{
		DB:      db,
		Uow:     infrarepo.NewUoW(db),
		Bus:     infraeventbus.NewWithMemory(logger),
		Numbers: numbers,
		Config:  cfg,
		Logger:  logger,
	}
}

// SeedUser stores a user whose password is Password.
func (e *Env) SeedUser(t testing.TB, username string) *user.User {
	t.Helper()
	hash, err := utils.HashSecret(Password)
	require.NoError(t, err)
	u, err := user.New(user.Profile{
		Username:  username,
		Email:     username + "@example.com",
		Firstname: "Test",
		Lastname:  username,
	}, hash)
	require.NoError(t, err)
	require.NoError(t, infrarepo.NewUserRepository(e.DB).Create(context.Background(), u))
	return u
}

// SeedAccount stores an account holding balance.
func (e *Env) SeedAccount(t testing.TB, userID uuid.UUID, code currency.Code, balance string) *account.Account {
	t.Helper()
	a, err := account.New().
		WithUserID(userID).
		WithCurrency(code).
		WithNumber(e.Numbers.Next()).
		WithBalance(decimal.RequireFromString(balance)).
		Build()
	require.NoError(t, err)
	require.NoError(t, infrarepo.NewAccountRepository(e.DB).Create(context.Background(), a))
	return a
}

// Balance reads the persisted balance of an account, e.g. "100.00 USD".
func (e *Env) Balance(t testing.TB, accountID uuid.UUID) string {
	t.Helper()
	a, err := infrarepo.NewAccountRepository(e.DB).Get(context.Background(), accountID)
	require.NoError(t, err)
	return a.Balance.String()
}

// Transactions lists what userID owns, newest first.
func (e *Env) Transactions(t testing.TB, userID uuid.UUID) []*account.Transaction {
	t.Helper()
	txs, err := infrarepo.NewTransactionRepository(e.DB).ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return txs
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
