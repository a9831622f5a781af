package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyCache implements shared.IdempotencyCache using Redis.
// This is the store used in distributed deployments where multiple
// instances must share idempotency state.
type RedisIdempotencyCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisIdempotencyCache creates a new Redis-based idempotency cache
func NewRedisIdempotencyCache(cfg RedisConfig) (*RedisIdempotencyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "idem:"
	}
	return &RedisIdempotencyCache{client: client, keyPrefix: prefix}, nil
}

// NewRedisIdempotencyCacheWithClient creates a cache with an existing Redis
// client, useful when sharing a client across components
func NewRedisIdempotencyCacheWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyCache {
	if keyPrefix == "" {
		keyPrefix = "idem:"
	}
	return &RedisIdempotencyCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached response for the key, if present and unexpired
func (c *RedisIdempotencyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return data, true, nil
}

// Set caches a response under the key with the given TTL. SetNX keeps the
// first stored response authoritative if two executions race on one key.
func (c *RedisIdempotencyCache) Set(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, c.keyPrefix+key, response, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisIdempotencyCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisIdempotencyCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisIdempotencyCache implements shared.IdempotencyCache
var _ shared.IdempotencyCache = (*RedisIdempotencyCache)(nil)
