package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

var (
	ErrLockNotAcquired = errors.New("booking lock not acquired")
)

// Locker serializes the read-check-write triple around a booking so two
// concurrent attempts cannot both observe the same free slot. Scoped per
// clinic date: bookings on different days never contend.
type Locker interface {
	WithDateLock(ctx context.Context, date timeops.Date, fn func(ctx context.Context) error) error
}

type redisDateLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDateLocker creates a locker that uses a per date Redis key
func NewRedisDateLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisDateLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisDateLocker) WithDateLock(ctx context.Context, date timeops.Date, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:booking:%s", date.Compact())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisDateLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release booking lock: %w", err)
	}
	return nil
}
