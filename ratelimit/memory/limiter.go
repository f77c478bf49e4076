// Package memorylimiter is a single-node sliding-window rate limiter, used
// to slow voucher-code guessing when Redis is not deployed.
package memorylimiter

import (
	"fmt"
	"sync"
	"time"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter tracks request timestamps per bucket+key pair.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	history map[string][]int64 // unix ms, oldest first
}

// New constructs a limiter with the provided per-bucket limits. A "default"
// entry covers unknown buckets; absent that, 100/minute applies.
func New(limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = map[string]Limit{}
	}
	return &Limiter{limits: limits, history: make(map[string][]int64)}
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
// window. Denied attempts are not recorded, so a client that keeps retrying
// does not extend its own penalty.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}

	lim := l.limitFor(bucket)
	nowMs := time.Now().UnixMilli()
	windowStart := nowMs - lim.Window.Milliseconds()
	entryKey := key + ":" + bucket

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.history[entryKey]
	for len(ts) > 0 && ts[0] < windowStart {
		ts = ts[1:]
	}
	if len(ts) >= lim.Limit {
		l.history[entryKey] = ts
		return false, nil
	}
	ts = append(ts, nowMs)
	l.history[entryKey] = ts
	return true, nil
}
