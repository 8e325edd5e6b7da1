package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("session lock not acquired")
)

const defaultRetryInterval = 25 * time.Millisecond

// SessionLocker guards one conversation turn at a time across every API instance.
type SessionLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewSessionLocker creates a locker keyed by session id. ttl bounds how long a crashed
// holder can keep the key; wait bounds how long a caller queues before ErrLockNotAcquired.
func NewSessionLocker(client *redis.Client, ttl, wait time.Duration) *SessionLocker {
	return &SessionLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  defaultRetryInterval,
	}
}

func (l *SessionLocker) WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:session:%s", sessionID)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// release even when the caller's context is already gone
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *SessionLocker) acquire(ctx context.Context, key, token string) error {
	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if waitCtx.Err() != nil {
				return ErrLockNotAcquired
			}
			return fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-waitCtx.Done():
			return ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *SessionLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
