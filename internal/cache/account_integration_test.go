//go:build integration

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/testutil"
)

func newAccountCache(t *testing.T) (*cache.Cache, *cache.AccountCache) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return c, cache.NewAccountCache(c, time.Minute)
}

func TestAccountCache_RoundTrip(t *testing.T) {
	_, ac := newAccountCache(t)
	ctx := context.Background()

	account := &model.Account{ID: 42, Username: "alice", Email: "a@x.com", Password: "p"}
	if err := ac.SetAccount(ctx, account); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}

	byID, err := ac.GetAccountByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetAccountByID: %v", err)
	}
	if *byID != *account {
		t.Errorf("GetAccountByID = %+v, want %+v", byID, account)
	}

	byName, err := ac.GetAccountByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccountByUsername: %v", err)
	}
	if *byName != *account {
		t.Errorf("GetAccountByUsername = %+v, want %+v", byName, account)
	}
}

func TestAccountCache_Miss(t *testing.T) {
	_, ac := newAccountCache(t)
	ctx := context.Background()

	if _, err := ac.GetAccountByID(ctx, 7); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("GetAccountByID err = %v, want ErrCacheMiss", err)
	}
	if _, err := ac.GetAccountByUsername(ctx, "nobody"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("GetAccountByUsername err = %v, want ErrCacheMiss", err)
	}
}

func TestAccountCache_TTLApplied(t *testing.T) {
	c, ac := newAccountCache(t)
	ctx := context.Background()

	if err := ac.SetAccount(ctx, &model.Account{ID: 1, Username: "bob"}); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}

	for _, key := range []string{"account:id:1", "account:username:bob"} {
		ttl, err := c.Client().TTL(ctx, key).Result()
		if err != nil {
			t.Fatalf("TTL %s: %v", key, err)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Errorf("TTL %s = %s, want (0, 1m]", key, ttl)
		}
	}
}

func TestCheckIPRateLimit_ExhaustsBurst(t *testing.T) {
	c, _ := newAccountCache(t)
	ctx := context.Background()

	// Timestamps have one-second resolution, so a refill of at most one
	// token can land between calls; two extra requests still hit the limit.
	const burst = 3
	denied := 0
	for i := 0; i < burst+2; i++ {
		res, err := c.CheckIPRateLimit(ctx, "192.0.2.10", 1, burst)
		if err != nil {
			t.Fatalf("CheckIPRateLimit: %v", err)
		}
		if i < burst && !res.Allowed {
			t.Fatalf("request %d denied within burst", i)
		}
		if !res.Allowed {
			denied++
			if res.RetryAfter <= 0 {
				t.Errorf("RetryAfter = %s, want > 0", res.RetryAfter)
			}
		}
	}

	if denied == 0 {
		t.Error("no request beyond burst was denied")
	}
}
