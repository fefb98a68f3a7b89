package locks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "cs_1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "cs_1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	_, err = l.Acquire(ctx, "cs_2", time.Minute)
	assert.NoError(t, err, "other keys are independent")

	release()
	release()

	_, err = l.Acquire(ctx, "cs_1", time.Minute)
	assert.NoError(t, err)
}

func TestMemoryLockerExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }

	staleRelease, err := l.Acquire(context.Background(), "cs_1", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = l.Acquire(context.Background(), "cs_1", time.Minute)
	require.NoError(t, err, "expired lock can be taken over")

	staleRelease()
	_, err = l.Acquire(context.Background(), "cs_1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld, "stale release must not free the new holder")
}
