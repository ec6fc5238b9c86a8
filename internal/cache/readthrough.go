package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Store is the cache-aside seam the services go through: reads try the
// cache and fall back to the authoritative fetch, writes invalidate after
// the store commit. Cache failures are logged and absorbed here so the
// services only ever see store errors.
type Store struct {
	Cache  Cache
	Logger *zap.Logger
}

// NewStore wraps a cache backend for read-through use.
func NewStore(c Cache, logger *zap.Logger) *Store {
	return &Store{Cache: c, Logger: logger}
}

// ReadThrough returns the cached value under key, or fetches it from the
// authoritative store and populates the cache. A fetch error is returned
// as-is and nothing is cached, so a not-found never becomes a cached
// sentinel. Cache write failures are logged; the fetched value is
// returned regardless.
func ReadThrough[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	data, err := s.Cache.Get(ctx, key)
	if err == nil {
		var v T
		if err := Unmarshal(data, &v); err == nil {
			return v, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		s.Logger.Warn("cache entry undecodable", zap.String("key", key))
		if err := s.Cache.Delete(ctx, key); err != nil {
			s.Logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		s.Logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if data, err := Marshal(v); err == nil {
		if err := s.Cache.Set(ctx, key, data, ttl); err != nil {
			s.Logger.Warn("cache populate failed", zap.String("key", key), zap.Error(err))
		}
	} else {
		s.Logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
	}

	return v, nil
}

// Invalidate removes the exact keys of the given selectors plus every
// list pattern the policy registers. It runs strictly after the
// authoritative write has committed; a concurrent reader may still
// repopulate between that commit and this call, which bounds staleness at
// the entity's TTL rather than eliminating it.
func (s *Store) Invalidate(ctx context.Context, pol Policy, selectors ...string) {
	if len(selectors) == 0 && pol.Key != nil && len(pol.ListPatterns) == 0 {
		// Singleton entity: the exact key is the only key.
		selectors = []string{""}
	}
	for _, sel := range selectors {
		key := pol.Key(sel)
		if err := s.Cache.Delete(ctx, key); err != nil {
			s.Logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
		}
	}
	for _, pattern := range pol.ListPatterns {
		if n, err := s.Cache.DeletePattern(ctx, pattern); err != nil {
			s.Logger.Warn("cache pattern invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		} else if n > 0 {
			s.Logger.Debug("cache pattern invalidated", zap.String("pattern", pattern), zap.Int("keys", n))
		}
	}
}
