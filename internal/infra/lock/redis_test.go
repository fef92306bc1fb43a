package lock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, RedisOptions{
		TTL:           time.Second,
		WaitTimeout:   50 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
	}, nil, nil)
	return locker, mr
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	locker, mr := newRedisLocker(t)

	release, err := locker.Acquire(context.Background(), "doctor:1:2024-06-10")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:appointments:doctor:1:2024-06-10"))

	release()
	assert.False(t, mr.Exists("lock:appointments:doctor:1:2024-06-10"))
}

func TestRedisLocker_SecondAcquireTimesOut(t *testing.T) {
	locker, _ := newRedisLocker(t)

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(context.Background(), "k")
	require.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	locker := NewRedisLocker(client, RedisOptions{WaitTimeout: time.Second, RetryInterval: 5 * time.Millisecond}, nil, nil)

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	second, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	second()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	locker, mr := newRedisLocker(t)

	stale, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	// ttl истек, ключ занял другой владелец
	mr.FastForward(2 * time.Second)
	fresh, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("lock:appointments:k"), "stale owner must not delete the new lock")

	fresh()
	assert.False(t, mr.Exists("lock:appointments:k"))
}

func TestRedisLocker_StoreDown(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()

	_, err := locker.Acquire(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
