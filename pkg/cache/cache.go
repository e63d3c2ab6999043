package cache

import (
	"context"
	"time"

	"github.com/amirasaad/lendrix/pkg/provider"
)

// RateCache stores fetched rate tables. Get returns (nil, nil) on a miss.
type RateCache interface {
	Get(ctx context.Context, key string) (*provider.RateTable, error)
	Set(ctx context.Context, key string, table *provider.RateTable, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
