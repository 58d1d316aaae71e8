package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := New(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), "not-a-url://"); err == nil {
		t.Fatal("expected error for invalid Redis URL")
	}
}

func TestNew_Unreachable(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	_, err = New(context.Background(), "redis://"+addr, WithPoolSize(1))
	if err == nil {
		t.Fatal("expected error for unreachable Redis")
	}
	if !strings.Contains(err.Error(), addr) {
		t.Errorf("error %q should name the address", err)
	}
}

func TestNew_WithPoolSize(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := New(context.Background(), "redis://"+mr.Addr(), WithPoolSize(3), WithPoolSize(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if got := c.client.Options().PoolSize; got != 3 {
		t.Errorf("PoolSize = %d, want 3", got)
	}
}

func TestCache_Ping(t *testing.T) {
	t.Parallel()

	c, _ := setupCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestCheckIPRateLimit_ExhaustsBurst(t *testing.T) {
	t.Parallel()

	c, _ := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := c.CheckIPRateLimit(ctx, "auth", "10.0.0.1", 1, 2)
		if err != nil {
			t.Fatalf("CheckIPRateLimit() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res, err := c.CheckIPRateLimit(ctx, "auth", "10.0.0.1", 1, 2)
	if err != nil {
		t.Fatalf("CheckIPRateLimit() error = %v", err)
	}
	if res.Allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", res.RetryAfter)
	}

	other, err := c.CheckIPRateLimit(ctx, "auth", "10.0.0.2", 1, 2)
	if err != nil {
		t.Fatalf("CheckIPRateLimit() error = %v", err)
	}
	if !other.Allowed {
		t.Error("a different IP must have its own bucket")
	}

	scoped, err := c.CheckIPRateLimit(ctx, "recovery", "10.0.0.1", 1, 2)
	if err != nil {
		t.Fatalf("CheckIPRateLimit() error = %v", err)
	}
	if !scoped.Allowed {
		t.Error("a different scope must have its own bucket")
	}
}

func TestCheckIPRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	c, _ := setupCache(t)
	for i := 0; i < 5; i++ {
		res, err := c.CheckIPRateLimit(context.Background(), "auth", "10.0.0.1", 0, 1)
		if err != nil || !res.Allowed {
			t.Fatalf("zero rate must not limit: %+v, %v", res, err)
		}
	}
}

func TestCheckIPRateLimit_FailsOpen(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	res, err := c.CheckIPRateLimit(context.Background(), "auth", "10.0.0.1", 1, 1)
	if err != nil {
		t.Fatalf("CheckIPRateLimit() error = %v", err)
	}
	if !res.Allowed {
		t.Error("rate limiting must fail open when Redis is down")
	}
}

func TestConsumeOnce(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	ctx := context.Background()

	first, err := c.ConsumeOnce(ctx, "jti-1", time.Hour)
	if err != nil || !first {
		t.Fatalf("first ConsumeOnce() = %v, %v; want true, nil", first, err)
	}

	second, err := c.ConsumeOnce(ctx, "jti-1", time.Hour)
	if err != nil || second {
		t.Fatalf("second ConsumeOnce() = %v, %v; want false, nil", second, err)
	}

	if ttl := mr.TTL(usedTokenPrefix + "jti-1"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(time.Hour + time.Second)
	again, err := c.ConsumeOnce(ctx, "jti-1", time.Hour)
	if err != nil || !again {
		t.Fatalf("ConsumeOnce() after expiry = %v, %v; want true, nil", again, err)
	}

	empty, err := c.ConsumeOnce(ctx, "", time.Hour)
	if err != nil || empty {
		t.Fatalf("ConsumeOnce(\"\") = %v, %v; want false, nil", empty, err)
	}
}

func TestRelease(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	ctx := context.Background()

	if ok, err := c.ConsumeOnce(ctx, "jti-1", time.Hour); err != nil || !ok {
		t.Fatalf("ConsumeOnce() = %v, %v; want true, nil", ok, err)
	}
	if err := c.Release(ctx, "jti-1"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if mr.Exists(usedTokenPrefix + "jti-1") {
		t.Error("marker should be gone after Release")
	}
	if ok, err := c.ConsumeOnce(ctx, "jti-1", time.Hour); err != nil || !ok {
		t.Fatalf("ConsumeOnce() after Release = %v, %v; want true, nil", ok, err)
	}
	if err := c.Release(ctx, ""); err != nil {
		t.Errorf("Release(\"\") error = %v", err)
	}
}

func TestConsumeOnce_FailsClosed(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	ok, err := c.ConsumeOnce(context.Background(), "jti-1", time.Hour)
	if err == nil || ok {
		t.Fatalf("ConsumeOnce() = %v, %v; want false and an error", ok, err)
	}
}
