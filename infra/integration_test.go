package infra_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/infra"
	infrarepo "github.com/amirasaad/lendrix/infra/repository"
	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "../internal/migrations")
}

// TestPostgres_MigrationsAndRepositories runs the SQL migrations against a real
// PostgreSQL and checks the constraints the ledger relies on.
func TestPostgres_MigrationsAndRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("lendrix"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDBConnection(&config.DB{Url: dsn, Driver: "postgres", MaxOpenConns: 5}, "test")
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db, migrationsDir()))
	// a second run is a no-op
	require.NoError(t, infra.RunMigrations(db, migrationsDir()))

	uow := infrarepo.NewUoW(db)
	numbers, err := infra.NewAccountNumberGenerator(1)
	require.NoError(t, err)

	u, err := user.New(user.Profile{Username: "pg", Email: "pg@example.com"}, "hash")
	require.NoError(t, err)

	err = uow.Do(ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		if _, err := users.GetForUpdate(ctx, u.ID); err != nil {
			return err
		}
		accounts, err := tx.AccountRepository()
		if err != nil {
			return err
		}
		a, err := account.New().WithUserID(u.ID).WithCurrency(currency.USD).WithNumber(numbers.Next()).Build()
		if err != nil {
			return err
		}
		return accounts.Create(ctx, a)
	})
	require.NoError(t, err)

	accounts, err := uow.AccountRepository()
	require.NoError(t, err)
	dup, err := account.New().WithUserID(u.ID).WithCurrency(currency.USD).WithNumber(numbers.Next()).Build()
	require.NoError(t, err)
	assert.ErrorIs(t, accounts.Create(ctx, dup), domain.ErrAlreadyExists)

	txs, err := uow.TransactionRepository()
	require.NoError(t, err)
	sum, err := txs.SumOutgoingSince(ctx, u.ID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}
