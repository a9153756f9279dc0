package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	candleusecase "stock_metrics/internal/feature/candles/usecase"
	metricadapters "stock_metrics/internal/feature/metrics/adapters"
	metricusecase "stock_metrics/internal/feature/metrics/usecase"
	"stock_metrics/internal/platform/config"
	infrahttp "stock_metrics/internal/platform/http"
	"stock_metrics/internal/platform/observability"
)

// BatchDeps are the shared resources a batch runner is built from. Redis and Metrics may be nil.
type BatchDeps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Metrics *observability.Metrics
}

// NewCandleSource returns the candle source selected by cfg.Source.
func NewCandleSource(cfg config.Config, deps BatchDeps) metricusecase.CandleSource {
	if cfg.Source == config.SourceMarket {
		return metricadapters.NewMarketCandleSource(NewMarket())
	}
	candles := candleusecase.NewCandlesUsecase(NewCandleRepository(deps.DB, deps.Redis))
	return metricadapters.NewDBCandleSource(candles)
}

// NewBatch wires the batch runner: candle source (rate limited when it is the market API),
// metric store, Prometheus collectors, Telegram notifier when configured and Redis run
// history when Redis is available.
func NewBatch(cfg config.Config, deps BatchDeps) *metricusecase.BatchUsecase {
	store := metricadapters.NewMetricRepository(deps.DB)
	b := metricusecase.NewBatchUsecase(NewCandleSource(cfg, deps), store, cfg.Engine(), cfg.Batch()).
		WithMetrics(deps.Metrics)
	if cfg.Source == config.SourceMarket {
		b.WithLimiter(NewMarketLimiter())
	}

	if tg := metricadapters.LoadTelegramConfig(); tg.Enabled() {
		b.WithNotifier(metricadapters.NewTelegramNotifier(tg, infrahttp.NewHTTPClient(cfg.FetchTimeout)))
	}
	if deps.Redis != nil {
		b.WithHistory(NewRunHistory(deps.Redis))
	}
	return b
}

// NewRunHistory returns the Redis run history.
func NewRunHistory(rdb *redis.Client) *metricadapters.RunHistoryRedis {
	return metricadapters.NewRunHistoryRedis(rdb, "runs", metricadapters.DefaultRunTTL)
}
