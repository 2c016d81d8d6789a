package testutil

import (
	"testing"
	"time"

	"kudi/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewCache returns a CacheService backed by an in-process Redis.
func NewCache(t *testing.T) (*cache.CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheService(client, time.Minute), mr
}
