//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/store"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestLinkCacheIntegration(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	newCached := func(t *testing.T) (*store.LinkCache, *store.Memory) {
		t.Helper()

		mem := store.NewMemory()

		return store.NewLinkCache(mem.Links(), client, time.Minute), mem
	}

	newCachedLink := func(t *testing.T, cached *store.LinkCache, domain string) *shortlink.Link {
		t.Helper()

		link := &shortlink.Link{
			ID:        uuid.NewString(),
			ShortCode: "rc" + uuid.NewString()[:8],
			TargetURL: "https://example.com",
			Domain:    domain,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}

		require.NoError(t, cached.Create(ctx, link))

		t.Cleanup(func() {
			_ = cached.Delete(ctx, link.ID)
		})

		return link
	}

	t.Run("serves lookups from cache after create", func(t *testing.T) {
		cached, mem := newCached(t)
		link := newCachedLink(t, cached, "")

		// Remove from the backing store; the cache must still answer.
		require.NoError(t, mem.Links().Delete(ctx, link.ID))

		got, err := cached.GetByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)

		client.Del(ctx, "link:|"+link.ShortCode)
	})

	t.Run("caches domain scoped key", func(t *testing.T) {
		cached, mem := newCached(t)
		link := newCachedLink(t, cached, "rc.example.com")

		require.NoError(t, mem.Links().Delete(ctx, link.ID))

		got, err := cached.GetByShortCodeAndDomain(ctx, link.ShortCode, "rc.example.com")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)

		client.Del(ctx, "link:|"+link.ShortCode, "link:rc.example.com|"+link.ShortCode)
	})

	t.Run("update refreshes the cached row", func(t *testing.T) {
		cached, _ := newCached(t)
		link := newCachedLink(t, cached, "")

		target := "https://updated.example.com"
		_, err := cached.Update(ctx, link.ID, shortlink.LinkUpdate{TargetURL: &target})
		require.NoError(t, err)

		got, err := cached.GetByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, target, got.TargetURL)

		client.Del(ctx, "link:|"+link.ShortCode)
	})

	t.Run("delete evicts cached keys", func(t *testing.T) {
		cached, _ := newCached(t)
		link := newCachedLink(t, cached, "")

		require.NoError(t, cached.Delete(ctx, link.ID))

		_, err := cached.GetByShortCode(ctx, link.ShortCode)
		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})
}
