package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/cache"
	"github.com/amirasaad/lendrix/pkg/provider"
	"golang.org/x/sync/singleflight"
)

// CachedExchangeRate wraps a provider with a cache. Concurrent misses share
// one upstream fetch.
type CachedExchangeRate struct {
	next   provider.ExchangeRate
	cache  cache.RateCache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedExchangeRate creates a new CachedExchangeRate.
func NewCachedExchangeRate(
	next provider.ExchangeRate,
	cache cache.RateCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedExchangeRate {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedExchangeRate{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Rates returns the cached table, fetching from the next provider on a miss.
// Cache failures degrade to a direct fetch.
func (c *CachedExchangeRate) Rates(ctx context.Context) (*provider.RateTable, error) {
	key := "rates:" + c.next.Name()

	if table, err := c.cache.Get(ctx, key); err == nil && table != nil {
		c.logger.Debug("Cache hit for rates", "key", key)
		return table, nil
	} else if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		table, err := c.next.Rates(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, table, c.ttl); err != nil {
			c.logger.Error("Error setting cache for rates", "key", key, "error", err)
		}
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched rates from next provider", "key", key, "shared", shared)
	return v.(*provider.RateTable), nil
}

// Name returns the provider's name.
func (c *CachedExchangeRate) Name() string {
	return fmt.Sprintf("Cached(%s)", c.next.Name())
}

var _ provider.ExchangeRate = (*CachedExchangeRate)(nil)
