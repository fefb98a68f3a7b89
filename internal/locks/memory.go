package locks

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker used when no Redis is configured.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, ErrLockHeld
	}
	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			if l.held[key].Equal(expiresAt) {
				delete(l.held, key)
			}
			l.mu.Unlock()
		})
	}, nil
}
