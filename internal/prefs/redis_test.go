package prefs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()
	addr := os.Getenv("PANEL_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: time.Second, MaxRetries: -1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return NewRedisStoreWithClient(client, zap.NewNop()), client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, client := newTestRedisStore(t)
	defer store.Close()

	ctx := context.Background()
	key := "test-" + t.Name()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), constants.PrefsConfig.RedisPrefix+key).Err()
	})
	_ = client.Del(ctx, constants.PrefsConfig.RedisPrefix+key).Err()

	if _, found, err := store.Get(ctx, key); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}
	if err := store.Set(ctx, key, "zh"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, key, "ko"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, found, err := store.Get(ctx, key)
	if err != nil || !found || value != "ko" {
		t.Fatalf("expected ko, got %q found=%v err=%v", value, found, err)
	}
	if raw, _ := client.Get(ctx, constants.PrefsConfig.RedisPrefix+key).Result(); raw != "ko" {
		t.Fatalf("expected prefixed key in redis, got %q", raw)
	}
}

func TestRedisStoreReportsStorageError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	store := NewRedisStoreWithClient(client, zap.NewNop())
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, _, err := store.Get(ctx, "language"); err == nil {
		t.Fatal("expected get error against an unreachable server")
	}
	if err := store.Set(ctx, "language", "en"); err == nil {
		t.Fatal("expected set error against an unreachable server")
	}
}
