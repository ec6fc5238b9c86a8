package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// This abstraction allows swapping between memory cache (development)
// and Redis cache (production) without changing business logic.
//
// The cache is advisory, never authoritative: callers must treat every
// failure as a miss (reads) or a no-op (writes) and fall through to the
// document store.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL stores the value
	// without expiry (deleted only by explicit invalidation).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern and returns
	// the number of keys removed.
	DeletePattern(ctx context.Context, pattern string) (int, error)

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Increment atomically increments the integer value at key, creating
	// it at 1 when absent, and returns the new value. A positive TTL is
	// applied when the key is created, so counters expire instead of
	// accumulating in the keyspace forever.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// GetOrSet retrieves a value or computes and stores it if missing.
	// The computed value is returned even when the cache write fails.
	//
	// Two concurrent calls for the same key may both miss and both run fn.
	// That duplicate work is accepted: fn is an idempotent read of the
	// authoritative store, and avoiding it would need a single-flight
	// lock this layer deliberately does not have.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"

	// ErrUnavailable indicates the cache backend could not be reached
	// (timeout, connection failure, or open circuit breaker).
	ErrUnavailable CacheError = "cache unavailable"
)
