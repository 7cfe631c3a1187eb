package repository

import (
	"context"
	"time"
)

// RunLock guards a job against overlapping runs.
type RunLock interface {
	// TryAcquire takes the lock for at most ttl. ok is false when another
	// holder owns it. The returned release func must be called when done; its
	// error means the lock may stay held until ttl elapses.
	TryAcquire(ctx context.Context, ttl time.Duration) (release func() error, ok bool, err error)
}
