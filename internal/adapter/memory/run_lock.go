package memory

import (
	"context"
	"sync"
	"time"

	"github.com/user/price-tracker/internal/repository"
)

// RunLock is an in-process repository.RunLock, used when no Redis is configured.
type RunLock struct {
	mu      sync.Mutex
	held    bool
	expires time.Time
}

// NewRunLock creates an unlocked RunLock.
func NewRunLock() *RunLock {
	return &RunLock{}
}

var _ repository.RunLock = (*RunLock)(nil)

func (l *RunLock) TryAcquire(_ context.Context, ttl time.Duration) (func() error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.held && now.Before(l.expires) {
		return func() error { return nil }, false, nil
	}
	l.held = true
	l.expires = now.Add(ttl)
	// Each acquisition gets its own token so a stale release cannot free a newer holder.
	token := l.expires

	var once sync.Once
	release := func() error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held && l.expires.Equal(token) {
				l.held = false
			}
		})
		return nil
	}
	return release, true, nil
}
