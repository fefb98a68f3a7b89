// Package locks provides short-lived keyed locks that keep two deliveries of
// the same checkout session from being processed at the same time.
package locks

import (
	"context"
	"errors"
	"time"
)

var ErrLockHeld = errors.New("lock_held")

// Locker acquires a lock on key for at most ttl. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
