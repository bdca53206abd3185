package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheTTL    = 5 * time.Minute
	cachePrefix = "catalog:"
	// generation key: bumping it invalidates every cached list at once
	// without scanning for keys.
	genKey = "catalog:gen"
)

// CatalogCache caches serialized catalog list responses in Redis. Keys carry
// a generation counter; Invalidate bumps the counter so stale entries simply
// expire unread.
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get returns the cached payload for key, if present.
func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	full, err := c.versionedKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return payload, true, nil
}

// Set stores payload under key for the cache TTL.
func (c *CatalogCache) Set(ctx context.Context, key string, payload []byte) error {
	full, err := c.versionedKey(ctx, key)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, full, payload, cacheTTL).Err()
}

// Invalidate drops every cached list by advancing the generation counter.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, genKey).Err()
}

func (c *CatalogCache) versionedKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache generation: %w", err)
	}
	return fmt.Sprintf("%s%d:%s", cachePrefix, gen, key), nil
}
