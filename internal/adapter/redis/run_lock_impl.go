package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/user/price-tracker/internal/repository"
)

const runLockPrefix = "lock:"

// releaseScript deletes the lock only if it still holds our token, so an
// expired holder cannot free a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockImpl provides a concrete implementation for the RunLock interface using Redis.
type RunLockImpl struct {
	client *redis.Client
	key    string
}

// NewRunLock creates a lock stored under the given job name.
func NewRunLock(client *redis.Client, name string) *RunLockImpl {
	return &RunLockImpl{client: client, key: runLockPrefix + name}
}

var _ repository.RunLock = (*RunLockImpl)(nil)

func noopRelease() error { return nil }

// TryAcquire sets the lock key with NX and a TTL. The TTL frees the lock if
// the holder dies without releasing it.
func (l *RunLockImpl) TryAcquire(ctx context.Context, ttl time.Duration) (func() error, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return noopRelease, false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return noopRelease, false, nil
	}

	release := func() error {
		// The caller's context may already be cancelled; release independently.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", l.key, err)
		}
		return nil
	}
	return release, true, nil
}
