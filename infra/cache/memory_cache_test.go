package cache

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *provider.RateTable {
	return &provider.RateTable{
		Base:  currency.USD,
		Rates: map[currency.Code]decimal.Decimal{currency.EUR: decimal.RequireFromString("0.9")},
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	got, err := c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "rates:USD", sampleTable(), time.Minute))
	got, err = c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, currency.USD, got.Base)

	now = now.Add(time.Minute)
	got, err = c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", sampleTable(), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}
