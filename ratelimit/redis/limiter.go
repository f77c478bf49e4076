// Package redislimiter is a Redis-backed sliding-window rate limiter for
// multi-node deployments. It shares the memory limiter's AllowNamed shape.
package redislimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter keeps one ZSET of request timestamps per bucket+key pair.
type Limiter struct {
	rdb    *redis.Client
	limits map[string]Limit
}

// New constructs a limiter. A "default" bucket entry covers unknown
// buckets; absent that, 100/minute applies.
func New(rdb *redis.Client, limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = map[string]Limit{}
	}
	return &Limiter{rdb: rdb, limits: limits}
}

func (l *Limiter) limitFor(bucket string) Limit {
	if v, ok := l.limits[bucket]; ok {
		return v
	}
	if v, ok := l.limits["default"]; ok {
		return v
	}
	return Limit{Limit: 100, Window: time.Minute}
}

// AllowNamed reports whether one more request in bucket for key fits the
// window. A nil limiter or client allows everything, so callers can wire the
// limiter optionally.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	ctx := context.Background()
	lim := l.limitFor(bucket)
	now := time.Now().UnixNano()
	windowStart := now - lim.Window.Nanoseconds()
	entryKey := key + ":" + bucket

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, entryKey, redis.Z{Score: float64(now), Member: now})
	pipe.ZRemRangeByScore(ctx, entryKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, entryKey)
	pipe.Expire(ctx, entryKey, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	count, err := countCmd.Result()
	if err != nil {
		return false, err
	}
	if count > int64(lim.Limit) {
		// Roll back this attempt so denials do not consume quota.
		l.rdb.ZRem(ctx, entryKey, now)
		return false, nil
	}
	return true, nil
}
