package di

import (
	"context"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	candleadapters "stock_metrics/internal/feature/candles/adapters"
	candleusecase "stock_metrics/internal/feature/candles/usecase"
	"stock_metrics/internal/platform/cache"
	infraredis "stock_metrics/internal/platform/redis"
)

// NewRedis connects to Redis when REDIS_HOST is set. It returns nil when Redis
// is not configured or unreachable, and the callers run without cache and history.
func NewRedis(ctx context.Context) *redis.Client {
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig())
	if err != nil {
		if !errors.Is(err, infraredis.ErrNotConfigured) {
			log.Println("[WARN] Redis unavailable. Running without cache:", err)
		}
		return nil
	}
	return rdb
}

// NewCandleRepository returns the candle repository, wrapped in the Redis cache when rdb is set.
// Cached entries expire at the next daily refresh.
func NewCandleRepository(db *gorm.DB, rdb *redis.Client) candleusecase.CandleRepository {
	repo := candleadapters.NewCandleRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingCandleRepository(rdb, cache.TimeUntilNextRefresh(), repo, "candles")
}
