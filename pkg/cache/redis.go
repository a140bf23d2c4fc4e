package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOK = "OK"

// Redis is a Cache backed by a go-redis client. The client is shared and
// owned by the caller.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Set stores value under key. A non-positive ttl never expires.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	status, err := r.client.Set(ctx, key, value, ttl).Result()
	if err != nil {
		return errors.Join(ErrNotStored, err)
	}
	if status != redisOK {
		return ErrNotStored
	}
	return nil
}

// Has reports whether key exists.
func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Get returns the value under key or ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Remove deletes key. An absent key yields ErrNotRemoved.
func (r *Redis) Remove(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return errors.Join(ErrNotRemoved, err)
	}
	if n != 1 {
		return ErrNotRemoved
	}
	return nil
}

// Client exposes the underlying client.
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}
