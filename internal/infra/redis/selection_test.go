package redis_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletkeeper/internal/infra/redis"
	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// setupTestStore connects to a local Redis, skipping when none is running
func setupTestStore(t *testing.T) (*redis.SelectionStore, *goredis.Client) {
	client := goredis.NewClient(&goredis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use separate DB for tests
	})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping test: Redis not available")
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	return redis.NewSelectionStore(client, logger.Discard()), client
}

func TestSelectionStore(t *testing.T) {
	store, client := setupTestStore(t)
	ctx := context.Background()
	userID, walletID := uuid.New(), uuid.New()

	t.Run("empty", func(t *testing.T) {
		_, ok, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, userID, walletID))

		got, ok, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, walletID, got)

		// Other users are unaffected
		_, ok, err = store.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, userID))
		_, ok, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)

		// Clearing twice is fine
		require.NoError(t, store.Clear(ctx, userID))
	})

	t.Run("malformed entry reads as empty", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, redis.KeyPrefix+userID.String(), "garbage", 0).Err())

		_, ok, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
