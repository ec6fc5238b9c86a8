package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const scanBatchSize = 100

// RedisCache is the production Cache backed by Redis.
//
// Every operation runs under a short timeout and a circuit breaker: the
// cache must never become the slow path, so an unreachable Redis degrades
// to misses instead of queueing callers behind dial attempts.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// RedisConfig holds connection settings for the Redis cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	breaker := gobreaker.NewCircuitBreaker(breakerSettings(logger))

	return &RedisCache{
		client:  client,
		breaker: breaker,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// breakerSettings trips after five consecutive failures and probes again
// after fifteen seconds. A cache miss is a successful round trip, not a
// failure: only real backend errors may open the breaker.
func breakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    "redis-cache",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

// execute runs one Redis operation under the breaker and the per-op
// timeout. A cache miss passes through the breaker without counting as a
// failure.
func (c *RedisCache) execute(ctx context.Context, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, err := op(opCtx)
		if errors.Is(err, redis.Nil) {
			return res, ErrCacheMiss
		}
		return res, err
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, nil
}

// Get retrieves a value by key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

// Set stores a value with the given TTL. Zero TTL means no expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Delete removes a value by key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Del(ctx, key).Err()
	})
	return err
}

// DeletePattern removes keys matching a pattern using SCAN instead of
// KEYS. SCAN is non-blocking and production-safe, unlike KEYS which
// blocks the Redis server.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	res, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		var cursor uint64
		deleted := 0
		for {
			batch, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
			if err != nil {
				return deleted, fmt.Errorf("scan %s: %w", pattern, err)
			}
			if len(batch) > 0 {
				if err := c.client.Del(ctx, batch...).Err(); err != nil {
					return deleted, fmt.Errorf("delete batch: %w", err)
				}
				deleted += len(batch)
			}
			cursor = next
			if cursor == 0 {
				return deleted, nil
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// Exists checks if a key exists.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	res, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.client.Exists(ctx, key).Result()
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > 0, nil
}

// Increment atomically increments the integer at key. A positive TTL is
// applied when the increment creates the key; an existing key keeps its
// expiry.
func (c *RedisCache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	res, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		n, err := c.client.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if n == 1 && ttl > 0 {
			if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
				return nil, err
			}
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// GetOrSet retrieves a value or computes and stores it if missing. The
// computed value is returned even when the cache write fails.
func (c *RedisCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache populate failed", zap.String("key", key), zap.Error(err))
	}

	return value, nil
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	})
	return err
}

// Client exposes the underlying connection for non-cache uses of the
// same Redis, such as pub/sub.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
