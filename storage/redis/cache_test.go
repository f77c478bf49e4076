package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/open-rails/accesskit/entitlements"
	accesstest "github.com/open-rails/accesskit/testing"
)

func newTestCache(t *testing.T) (*CachedFetcher, *accesstest.Fetcher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := accesstest.NewFetcher()
	return NewCachedFetcher(rdb, next, "", time.Minute), next, mr
}

func TestFetchEffectiveCachesResult(t *testing.T) {
	c, next, _ := newTestCache(t)
	userID := uuid.New()
	next.SetEffective(userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "cert:intro-pack", Source: entitlements.SourceSubscription, Active: true},
	})

	list, err := c.FetchEffective(context.Background(), userID)
	if err != nil {
		t.Fatalf("FetchEffective: %v", err)
	}
	if len(list) != 1 || list[0].Scope != "cert:intro-pack" {
		t.Fatalf("unexpected list %+v", list)
	}

	list, err = c.FetchEffective(context.Background(), userID)
	if err != nil {
		t.Fatalf("FetchEffective (cached): %v", err)
	}
	if len(list) != 1 || list[0].Scope != "cert:intro-pack" {
		t.Fatalf("unexpected cached list %+v", list)
	}
	if next.EffectiveCalls != 1 {
		t.Errorf("EffectiveCalls = %d, want 1 (second read should hit the cache)", next.EffectiveCalls)
	}
}

func TestCorruptEntryRefetched(t *testing.T) {
	c, next, mr := newTestCache(t)
	userID := uuid.New()
	next.SetEffective(userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "redvsblue:unlimited", Source: entitlements.SourceGrant, Active: true},
	})
	mr.Set(c.key(userID), "not json")

	list, err := c.FetchEffective(context.Background(), userID)
	if err != nil {
		t.Fatalf("FetchEffective: %v", err)
	}
	if len(list) != 1 || list[0].Scope != "redvsblue:unlimited" {
		t.Fatalf("unexpected list %+v", list)
	}
	if next.EffectiveCalls != 1 {
		t.Errorf("EffectiveCalls = %d, want 1", next.EffectiveCalls)
	}
}

func TestInvalidateDropsCachedList(t *testing.T) {
	c, next, _ := newTestCache(t)
	userID := uuid.New()
	next.SetEffective(userID, nil)

	if _, err := c.FetchEffective(context.Background(), userID); err != nil {
		t.Fatalf("FetchEffective: %v", err)
	}
	if err := c.Invalidate(context.Background(), userID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := c.FetchEffective(context.Background(), userID); err != nil {
		t.Fatalf("FetchEffective: %v", err)
	}
	if next.EffectiveCalls != 2 {
		t.Errorf("EffectiveCalls = %d, want 2 after invalidation", next.EffectiveCalls)
	}
}

func TestRedisDownFallsThrough(t *testing.T) {
	c, next, mr := newTestCache(t)
	userID := uuid.New()
	next.SetEffective(userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "cert:*", Source: entitlements.SourceSubscription, Active: true},
	})
	mr.Close()

	list, err := c.FetchEffective(context.Background(), userID)
	if err != nil {
		t.Fatalf("FetchEffective with redis down: %v", err)
	}
	if len(list) != 1 || list[0].Scope != "cert:*" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestFetchBaseBypassesCache(t *testing.T) {
	c, next, _ := newTestCache(t)
	userID := uuid.New()
	next.SetBase(userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "cert:intro-pack", Source: entitlements.SourceVoucher, Active: true},
	})

	for i := 0; i < 2; i++ {
		list, err := c.FetchBase(context.Background(), userID)
		if err != nil {
			t.Fatalf("FetchBase: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("unexpected list %+v", list)
		}
	}
	if next.BaseCalls != 2 {
		t.Errorf("BaseCalls = %d, want 2 (fallback reads are never cached)", next.BaseCalls)
	}
}
