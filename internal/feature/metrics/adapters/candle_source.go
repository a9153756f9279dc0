package adapters

import (
	"context"
	"sort"

	candle "stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/metrics/usecase"
)

// DailyCandles reads stored daily candles in ascending order.
type DailyCandles interface {
	Daily(ctx context.Context, symbol string, count int) ([]candle.Candle, error)
}

// TimeSeriesFetcher pulls candles from a market data provider.
type TimeSeriesFetcher interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
}

type dbCandleSource struct {
	candles DailyCandles
}

var _ usecase.CandleSource = (*dbCandleSource)(nil)

// NewDBCandleSource serves candles ingested into the candles table.
func NewDBCandleSource(c DailyCandles) *dbCandleSource {
	return &dbCandleSource{candles: c}
}

func (s *dbCandleSource) Candles(ctx context.Context, symbol string, count int) ([]candle.Candle, error) {
	return s.candles.Daily(ctx, symbol, count)
}

type marketCandleSource struct {
	market TimeSeriesFetcher
}

var _ usecase.CandleSource = (*marketCandleSource)(nil)

// NewMarketCandleSource fetches daily candles straight from the provider.
// Throttling is left to the caller (BatchUsecase.WithLimiter).
func NewMarketCandleSource(market TimeSeriesFetcher) *marketCandleSource {
	return &marketCandleSource{market: market}
}

func (s *marketCandleSource) Candles(ctx context.Context, symbol string, count int) ([]candle.Candle, error) {
	cs, err := s.market.GetTimeSeries(ctx, symbol, candle.DailyInterval, count)
	if err != nil {
		return nil, err
	}
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = candle.DailyInterval
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Time.Before(cs[j].Time) })
	return cs, nil
}
