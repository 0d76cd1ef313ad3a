package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

func testLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDateLocker(client, 5*time.Second), mr
}

var testDate = timeops.Date{Year: 2025, Month: time.March, Day: 3}

func TestWithDateLockRunsCriticalSection(t *testing.T) {
	locker, mr := testLocker(t)

	ran := false
	err := locker.WithDateLock(context.Background(), testDate, func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:booking:20250303"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// Lock released after the critical section.
	assert.False(t, mr.Exists("lock:booking:20250303"))
}

func TestWithDateLockContention(t *testing.T) {
	locker, mr := testLocker(t)
	mr.Set("lock:booking:20250303", "someone-else")

	err := locker.WithDateLock(context.Background(), testDate, func(ctx context.Context) error {
		t.Fatal("critical section must not run while the date is locked")
		return nil
	})
	require.ErrorIs(t, err, ErrLockNotAcquired)

	// A held lock with a foreign token survives the failed attempt.
	got, _ := mr.Get("lock:booking:20250303")
	assert.Equal(t, "someone-else", got)
}

func TestWithDateLockDifferentDatesDoNotContend(t *testing.T) {
	locker, _ := testLocker(t)

	err := locker.WithDateLock(context.Background(), testDate, func(ctx context.Context) error {
		return locker.WithDateLock(ctx, testDate.AddDays(1), func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestWithDateLockPropagatesError(t *testing.T) {
	locker, mr := testLocker(t)

	boom := errors.New("insert failed")
	err := locker.WithDateLock(context.Background(), testDate, func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Released even when the critical section fails.
	assert.False(t, mr.Exists("lock:booking:20250303"))
}
