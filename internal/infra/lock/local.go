package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type localEntry struct {
	sem  chan struct{}
	refs int
}

// LocalLocker блокировки внутри одного процесса.
// Ключ держится в карте, пока есть владелец или ожидающие.
type LocalLocker struct {
	mu          sync.Mutex
	entries     map[string]*localEntry
	waitTimeout time.Duration
	metrics     Metrics
}

// NewLocalLocker waitTimeout <= 0 означает ожидание до отмены контекста
func NewLocalLocker(waitTimeout time.Duration, metrics Metrics) *LocalLocker {
	return &LocalLocker{
		entries:     make(map[string]*localEntry),
		waitTimeout: waitTimeout,
		metrics:     metrics,
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	started := time.Now()
	entry := l.ref(key)

	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		observe(l.metrics, BackendLocal, outcomeTimeout, started)
		return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
	}
	observe(l.metrics, BackendLocal, outcomeAcquired, started)

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.unref(key)
		})
	}, nil
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

// size число активных ключей
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
