// Package redisstore provides a Redis read-through cache for entitlement
// fetches.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/open-rails/accesskit/entitlements"
	"github.com/open-rails/accesskit/store"
)

// CachedFetcher decorates a store.Fetcher with a per-user Redis cache on the
// primary read. The cache is best-effort: any Redis failure falls through to
// the wrapped fetcher, and write-back errors are ignored. The fallback read
// always hits the source of truth.
type CachedFetcher struct {
	rdb   *redis.Client
	next  store.Fetcher
	keyNS string
	ttl   time.Duration
}

func NewCachedFetcher(rdb *redis.Client, next store.Fetcher, keyPrefix string, ttl time.Duration) *CachedFetcher {
	if keyPrefix == "" {
		keyPrefix = "access:entitlements:"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedFetcher{rdb: rdb, next: next, keyNS: keyPrefix, ttl: ttl}
}

func (c *CachedFetcher) key(userID uuid.UUID) string { return c.keyNS + userID.String() }

func (c *CachedFetcher) FetchEffective(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	if val, err := c.rdb.Get(ctx, c.key(userID)).Bytes(); err == nil {
		var cached []entitlements.Entitlement
		if err := json.Unmarshal(val, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and refetch.
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
	}
	list, err := c.next.FetchEffective(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(list); err == nil {
		_ = c.rdb.Set(ctx, c.key(userID), b, c.ttl).Err()
	}
	return list, nil
}

func (c *CachedFetcher) FetchBase(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	return c.next.FetchBase(ctx, userID)
}

// Invalidate drops the cached list for one user, e.g. right after a grant
// lands so the next load sees it.
func (c *CachedFetcher) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}
