package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client redis.Cmdable
	prefix string
}

// NewRedisAdapter creates a new Redis cache adapter. Every key is stored under prefix.
func NewRedisAdapter(client redis.Cmdable, prefix string) providers.CacheProvider {
	return &RedisAdapter{
		client: client,
		prefix: prefix,
	}
}

func (a *RedisAdapter) key(k string) string {
	return a.prefix + k
}

// Get retrieves a value from cache
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Get(ctx, a.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, providers.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.client.Set(ctx, a.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}
