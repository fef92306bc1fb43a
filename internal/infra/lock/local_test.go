package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveLockWait(backend, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, backend+":"+outcome)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker(0, nil)

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "doctor:1:2024-06-10")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			cur := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&maxActive)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Zero(t, locker.size(), "entries are dropped after release")
}

func TestLocalLocker_Timeout(t *testing.T) {
	metrics := &recordingMetrics{}
	locker := NewLocalLocker(20*time.Millisecond, metrics)

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), "k")
	require.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	release()
	release()

	again, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()

	assert.Equal(t, []string{"local:acquired", "local:timeout", "local:acquired"}, metrics.outcomes)
	assert.Zero(t, locker.size())
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker(20*time.Millisecond, nil)

	releaseA, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(context.Background(), "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker(0, nil)
	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestDoctorDayKey(t *testing.T) {
	doctor, err := domain.ParseUserID("6f1c2f5e-8a57-4a4e-9d0b-2f3c1b7a9e10")
	require.NoError(t, err)

	key := DoctorDayKey(doctor, time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, "doctor:6f1c2f5e-8a57-4a4e-9d0b-2f3c1b7a9e10:2024-06-10", key)
}
