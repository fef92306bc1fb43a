package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix     = "lock:appointments:"
	defaultTTL           = 10 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	releaseTimeout       = 2 * time.Second
)

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// RedisOptions параметры распределенной блокировки
type RedisOptions struct {
	Prefix        string
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

// RedisLocker блокировка на SET NX PX с токеном владельца.
// Снимается скриптом, который удаляет ключ только при совпадении токена.
type RedisLocker struct {
	client  *redis.Client
	opts    RedisOptions
	metrics Metrics
	logger  Logger
}

func NewRedisLocker(client *redis.Client, opts RedisOptions, metrics Metrics, logger Logger) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = defaultKeyPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	return &RedisLocker{
		client:  client,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	started := time.Now()
	redisKey := l.opts.Prefix + key
	token := uuid.NewString()

	if l.opts.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.WaitTimeout)
		defer cancel()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			observe(l.metrics, BackendRedis, outcomeTimeout, started)
			return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-timer.C:
		}

		ok, err := l.client.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				observe(l.metrics, BackendRedis, outcomeTimeout, started)
				return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
			}
			observe(l.metrics, BackendRedis, outcomeError, started)
			return nil, fmt.Errorf("%w: SetNX %s: %v", ErrLockStore, key, err)
		}
		if ok {
			observe(l.metrics, BackendRedis, outcomeAcquired, started)
			return l.releaser(redisKey, token), nil
		}

		timer.Reset(l.opts.RetryInterval)
	}
}

// releaser снимает блокировку с собственным контекстом, независимым от запроса
func (l *RedisLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			_, err := unlockScript.Run(ctx, l.client, []string{redisKey}, token).Result()
			if err != nil && !errors.Is(err, redis.Nil) && l.logger != nil {
				l.logger.Warn("RedisLocker: failed to release %s: %v", redisKey, err)
			}
		})
	}
}
