package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/cache"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/redis/go-redis/v9"
)

// RedisRateCache implements RateCache on Redis, storing tables as JSON.
type RedisRateCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisRateCache connects to url (e.g. "redis://localhost:6379/0").
func NewRedisRateCache(url, prefix string, logger *slog.Logger) (*RedisRateCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis cache: invalid URL: %w", err)
	}
	return NewRedisRateCacheWithClient(redis.NewClient(opt), prefix, logger), nil
}

// NewRedisRateCacheWithClient wraps an existing client.
func NewRedisRateCacheWithClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisRateCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRateCache{client: client, prefix: prefix, logger: logger.With("cache", "redis")}
}

func (r *RedisRateCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisRateCache) Get(ctx context.Context, key string) (*provider.RateTable, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var table provider.RateTable
	if err := json.Unmarshal(val, &table); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key, "rates", len(table.Rates))
	return &table, nil
}

func (r *RedisRateCache) Set(ctx context.Context, key string, table *provider.RateTable, ttl time.Duration) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

func (r *RedisRateCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close releases the underlying client.
func (r *RedisRateCache) Close() error {
	return r.client.Close()
}

var _ cache.RateCache = (*RedisRateCache)(nil)
