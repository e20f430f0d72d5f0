// Package cache memoises word-cloud results in Redis. Concurrent misses for
// the same paragraph share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
)

const keyPrefix = "wordcloud:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// ResultCache caches frequency lists by paragraph hash.
type ResultCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(store Store, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store:  store,
		ttl:    ttl,
		logger: logger.WithComponent("wordcloud-cache"),
	}
}

// Get returns the cached list. Store errors are logged and count as misses.
func (c *ResultCache) Get(ctx context.Context, paragraph string) ([]frequency.Entry, bool) {
	key := buildKey(paragraph)
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var entries []frequency.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return entries, true
}

// Set stores entries; failures are logged and otherwise ignored.
func (c *ResultCache) Set(ctx context.Context, paragraph string, entries []frequency.Entry) {
	key := buildKey(paragraph)
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached list or runs computeFn once per key across
// concurrent callers. hit reports whether the value came from Redis.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	paragraph string,
	computeFn func() ([]frequency.Entry, error),
) (entries []frequency.Entry, hit bool, err error) {
	if entries, ok := c.Get(ctx, paragraph); ok {
		return entries, true, nil
	}
	val, err, _ := c.group.Do(buildKey(paragraph), func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, paragraph, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]frequency.Entry), false, nil
}

// Invalidate drops every cached word-cloud result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counters since start.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func buildKey(paragraph string) string {
	sum := sha256.Sum256([]byte(paragraph))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
