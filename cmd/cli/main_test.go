package main

import (
	"bytes"
	"context"
	"testing"

	infraprovider "github.com/amirasaad/lendrix/infra/provider"
	"github.com/amirasaad/lendrix/pkg/app"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) { testutils.Main(m) }

func newApp(t *testing.T) (*app.App, *testutils.Env) {
	env := testutils.NewEnv(t)
	return app.New(&app.Deps{
		Uow:          env.Uow,
		Numbers:      env.Numbers,
		ExchangeRate: infraprovider.NewStaticExchangeRate(currency.USD, infraprovider.DefaultStaticRates()),
		EventBus:     env.Bus,
		Logger:       env.Logger,
	}, env.Config), env
}

func TestRun(t *testing.T) {
	a, env := newApp(t)
	alice := env.SeedUser(t, "alice")
	env.SeedAccount(t, alice.ID, currency.USD, "0")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, a, []string{"deposit", "alice", "usd", "2500"}, &out))
	assert.Contains(t, out.String(), "Deposited 2500.00 USD")

	out.Reset()
	require.NoError(t, run(ctx, a, []string{"accounts", "alice"}, &out))
	assert.Contains(t, out.String(), "2500.00 USD")

	out.Reset()
	require.NoError(t, run(ctx, a, []string{"limits", "alice", "2000.01"}, &out))
	assert.Equal(t, "daily: false\nweekly: true\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, a, []string{"rates"}, &out))
	assert.Contains(t, out.String(), "base USD (static)")
	assert.Contains(t, out.String(), "JPY\t150")
}

func TestRun_Errors(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, run(ctx, a, []string{"accounts"}, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run(ctx, a, []string{"accounts", "ghost"}, &bytes.Buffer{}), domain.ErrNotFound)
	assert.Error(t, run(ctx, a, []string{"deposit", "alice", "USD", "ten"}, &bytes.Buffer{}))
	assert.ErrorContains(t, run(ctx, a, []string{"launch"}, &bytes.Buffer{}), `unknown command "launch"`)
}
