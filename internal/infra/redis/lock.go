// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockHeld = errors.New("lock already held")

// Locker serializes finalize attempts for one token across gateway
// instances. The database status guard stays authoritative; the lock only
// keeps concurrent attempts from racing to the same row.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type RedisLocker struct {
	cli *redis.Client
}

var _ Locker = (*RedisLocker)(nil)

func NewLocker(c *redClient) *RedisLocker {
	return &RedisLocker{cli: c.raw()}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < 5; i++ { // 5 tries
		ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			continue
		}
		if ok {
			return token, nil
		}
		time.Sleep(50 * time.Millisecond) // wait before retrying
	}
	return "", ErrLockHeld
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}

// NoopLocker hands out uncontended locks; used when redis is not configured.
type NoopLocker struct{}

var _ Locker = NoopLocker{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (string, error) {
	return uuid.NewString(), nil
}

func (NoopLocker) Unlock(context.Context, string, string) error { return nil }

func FinalizeLockKey(token string) string {
	return "lock:finalize:" + token
}
