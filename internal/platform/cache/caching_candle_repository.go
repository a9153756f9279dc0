// Package cache provides a Redis read-through cache for candle repositories.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/candles/usecase"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "candles"
	scanBatch        = 200
)

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// A nil Redis client disables caching and every call goes to the inner repository.
type CachingCandleRepository struct {
	inner     usecase.CandleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository wraps inner. ttl <= 0 selects 5 minutes and an empty namespace "candles".
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingCandleRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// UpsertBatch writes through to the inner repository and then drops every cached
// query of the touched (symbol, interval) pairs. Invalidation is best effort.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.prefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			slog.Warn("candle cache invalidation failed", "symbol", cd.Symbol, "interval", cd.Interval, "error", err)
		}
	}
	return nil
}

// Find serves the query from Redis when possible and caches database results otherwise.
func (c *CachingCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	}

	key := c.key(symbol, interval, outputsize)
	if out, ok := c.load(ctx, key); ok {
		return out, nil
	}

	out, err := c.inner.Find(ctx, symbol, interval, outputsize)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// load returns the cached candles for key. A corrupted entry is deleted.
func (c *CachingCandleRepository) load(ctx context.Context, key string) ([]entity.Candle, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("candle cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(b) == 0 {
		return nil, false
	}
	var out []entity.Candle
	if err := json.Unmarshal(b, &out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return out, true
}

func (c *CachingCandleRepository) store(ctx context.Context, key string, candles []entity.Candle) {
	b, err := json.Marshal(candles)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("candle cache write failed", "key", key, "error", err)
	}
}

// key is "<namespace>:<symbol>:<interval>:<outputsize>".
func (c *CachingCandleRepository) key(symbol, interval string, outputsize int) string {
	return fmt.Sprintf("%s%d", c.prefix(symbol, interval), outputsize)
}

func (c *CachingCandleRepository) prefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:", c.namespace, safe(symbol), safe(interval))
}

// deleteByPattern deletes all keys matching pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// safe replaces characters that would break the key layout or glob patterns.
var safe = strings.NewReplacer(" ", "_", ":", "_", "*", "_", "?", "_", "[", "_", "]", "_").Replace
