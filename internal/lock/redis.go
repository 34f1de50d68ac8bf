package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis obtains locks with redislock. A lock expires after ttl even if its holder dies.
type Redis struct {
	locker *redislock.Client
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{locker: redislock.New(client), ttl: ttl}
}

// Obtain retries every 100ms until ctx ends or the lock TTL passes.
func (r *Redis) Obtain(ctx context.Context, key string) (Release, error) {
	retry := redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(r.ttl/(100*time.Millisecond)))
	l, err := r.locker.Obtain(ctx, key, r.ttl, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrBusy)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}, nil
}

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}
