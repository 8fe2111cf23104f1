package recent

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geoweather:"

// RedisSlot stores each key as a redis string
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot creates a slot over client. A zero ttl keeps keys forever.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, ErrSlotClosed
	}
	b, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisSlot) Write(ctx context.Context, key string, payload []byte) error {
	if r.client == nil {
		return ErrSlotClosed
	}
	return r.client.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err()
}
