package lock

import (
	"context"
	"time"
)

// Locker сериализует критические секции по ключу.
// release идемпотентен и должен вызываться всегда после успешного Acquire.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Metrics метрики ожидания блокировки
type Metrics interface {
	ObserveLockWait(backend, outcome string, duration time.Duration)
}

type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
