package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/lendrix/pkg/cache"
	"github.com/amirasaad/lendrix/pkg/provider"
)

// MemoryCache implements RateCache in process memory. Expired entries are
// dropped lazily on read.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	now     func() time.Time
}

type cacheEntry struct {
	table     *provider.RateTable
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a table, or nil when absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*provider.RateTable, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.table, nil
}

// Set stores a table with TTL.
func (c *MemoryCache) Set(_ context.Context, key string, table *provider.RateTable, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{table: table, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes a table.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

var _ cache.RateCache = (*MemoryCache)(nil)
