package locks

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLockerExclusive(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client, "storefront:test:"+uuid.NewString()+":")
	ctx := context.Background()

	release, err := l.Acquire(ctx, "cs_1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "cs_1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	release()
	release()

	release, err = l.Acquire(ctx, "cs_1", time.Minute)
	require.NoError(t, err)
	release()
}
