package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := c.Set(ctx, "k", "v", 50*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := c.Get(ctx, "k"); err != nil || v != "v" {
		t.Fatalf("get: %q %v", v, err)
	}
	time.Sleep(70 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
	_ = c.Set(ctx, "k2", "v2", time.Minute)
	_ = c.Del(ctx, "k2")
	if _, err := c.Get(ctx, "k2"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCache(ctx, client)
	if _, ok := c.(*RedisCache); !ok {
		t.Fatalf("expected redis-backed cache, got %T", c)
	}
	if err := c.Set(ctx, "stats", `{"totalTodos":3}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := c.Get(ctx, "stats"); err != nil || v != `{"totalTodos":3}` {
		t.Fatalf("get: %q %v", v, err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := c.Get(ctx, "stats"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
}

func TestNewCacheFallsBackWithoutRedis(t *testing.T) {
	c := NewCache(context.Background(), nil)
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected memory fallback, got %T", c)
	}
}
