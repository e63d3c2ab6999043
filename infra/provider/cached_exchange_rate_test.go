package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infracache "github.com/amirasaad/lendrix/infra/cache"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (p *countingProvider) Rates(context.Context) (*provider.RateTable, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	if p.err != nil {
		return nil, p.err
	}
	return NewStaticExchangeRate(currency.USD, DefaultStaticRates()).Rates(context.Background())
}

func (p *countingProvider) Name() string { return "counting" }

func TestCachedExchangeRate_CachesWithinTTL(t *testing.T) {
	next := &countingProvider{}
	cached := NewCachedExchangeRate(next, infracache.NewMemoryCache(), time.Minute, nil)

	for range 3 {
		table, err := cached.Rates(context.Background())
		require.NoError(t, err)
		assert.Equal(t, currency.USD, table.Base)
	}
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, "Cached(counting)", cached.Name())
}

func TestCachedExchangeRate_ConcurrentMissesShareOneFetch(t *testing.T) {
	next := &countingProvider{delay: 50 * time.Millisecond}
	cached := NewCachedExchangeRate(next, infracache.NewMemoryCache(), time.Minute, nil)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cached.Rates(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedExchangeRate_ErrorsAreNotCached(t *testing.T) {
	next := &countingProvider{err: errors.New("upstream down")}
	cached := NewCachedExchangeRate(next, infracache.NewMemoryCache(), time.Minute, nil)

	_, err := cached.Rates(context.Background())
	require.Error(t, err)
	_, err = cached.Rates(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestStaticExchangeRate(t *testing.T) {
	s := NewStaticExchangeRate(currency.USD, map[currency.Code]decimal.Decimal{
		currency.EUR: decimal.RequireFromString("0.90"),
	})
	table, err := s.Rates(context.Background())
	require.NoError(t, err)

	rate, err := table.Rate(currency.USD, currency.EUR)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.9").Equal(rate))

	_, err = table.Rate(currency.USD, currency.GBP)
	assert.Error(t, err)
}
