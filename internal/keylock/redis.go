package keylock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker for multi-instance deployments: SET NX with a TTL and
// owner token, polled until acquired or the context expires.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *Redis) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := "lock:" + key
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}

	defer func() {
		if _, err := releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{lockKey}, token).Result(); err != nil {
			l.logger.Warn("failed to release lock, TTL will expire it",
				"key", key,
				"error", err)
		}
	}()

	return fn(ctx)
}
