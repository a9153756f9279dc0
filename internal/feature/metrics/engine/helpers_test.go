package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	candle "stock_metrics/internal/feature/candles/domain/entity"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seriesFromCloses builds a daily series with high/low one unit around each close.
func seriesFromCloses(t *testing.T, symbol string, closes ...float64) Series {
	t.Helper()
	cs := make([]candle.Candle, len(closes))
	for i, c := range closes {
		cs[i] = candle.Candle{
			Symbol:   symbol,
			Interval: candle.DailyInterval,
			Time:     baseTime.AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
		}
	}
	s, err := NewSeries(symbol, cs)
	require.NoError(t, err)
	return s
}

// seriesFromOHLC builds a daily series from {open, high, low, close} tuples.
func seriesFromOHLC(t *testing.T, symbol string, ohlc ...[4]float64) Series {
	t.Helper()
	cs := make([]candle.Candle, len(ohlc))
	for i, v := range ohlc {
		cs[i] = candle.Candle{
			Symbol: symbol,
			Time:   baseTime.AddDate(0, 0, i),
			Open:   v[0],
			High:   v[1],
			Low:    v[2],
			Close:  v[3],
		}
	}
	s, err := NewSeries(symbol, cs)
	require.NoError(t, err)
	return s
}

// rawSeries builds a series without validation so gates on degenerate prices
// can be reached.
func rawSeries(symbol string, closes ...float64) Series {
	cs := make([]candle.Candle, len(closes))
	for i, c := range closes {
		cs[i] = candle.Candle{Symbol: symbol, Time: baseTime.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return Series{symbol: symbol, candles: cs}
}
