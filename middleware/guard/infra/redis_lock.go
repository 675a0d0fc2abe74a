package infra

import (
	"context"
	"strings"
	"time"

	"cms-maintenance/middleware/guard/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// só apaga a chave se o valor ainda for o token do dono.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLockFactory cria locks nomeados compartilhados entre processos/instâncias.
type RedisLockFactory struct {
	rdb        *redis.Client
	prefix     string
	retryEvery time.Duration
}

type RedisLockOption func(*RedisLockFactory)

func WithLockPrefix(prefix string) RedisLockOption {
	return func(f *RedisLockFactory) { f.prefix = strings.Trim(prefix, ":") }
}

// WithLockRetry define o intervalo de polling enquanto o lock está ocupado.
func WithLockRetry(d time.Duration) RedisLockOption {
	return func(f *RedisLockFactory) { f.retryEvery = d }
}

func NewRedisLockFactory(rdb *redis.Client, opts ...RedisLockOption) *RedisLockFactory {
	f := &RedisLockFactory{
		rdb:        rdb,
		prefix:     "guard:lock",
		retryEvery: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RedisLockFactory) CreateLock(name string, ttl time.Duration) domain.Lock {
	return &redisLock{
		rdb:   f.rdb,
		key:   f.prefix + ":" + name,
		token: uuid.NewString(),
		ttl:   ttl,
		retry: f.retryEvery,
	}
}

type redisLock struct {
	rdb   *redis.Client
	key   string
	token string
	ttl   time.Duration
	retry time.Duration
}

func (l *redisLock) Acquire(ctx context.Context) error {
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, l.token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *redisLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLockNotHeld
	}
	return nil
}
