package engine

import (
	"github.com/markcheno/go-talib"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// TrueRanges returns the true range of every candle.
// The first candle has no previous close, so its range is high-low.
func TrueRanges(s Series) []float64 {
	n := s.Len()
	if n == 0 {
		return nil
	}
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range s.candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}
	tr := talib.TRange(highs, lows, closes)
	tr[0] = highs[0] - lows[0]
	return tr
}

// ATR averages the trailing window true ranges of the series.
func ATR(s Series, window int) (entity.Result, error) {
	if window < 1 || s.Len() < window {
		return entity.Result{}, &domain.InsufficientCandlesError{Required: window, Got: s.Len()}
	}
	tr := TrueRanges(s)
	atr, err := Mean(tr[len(tr)-window:])
	if err != nil {
		return entity.Result{}, err
	}
	return entity.Result{
		Kind:      entity.KindATR,
		Symbol:    s.Symbol(),
		Timestamp: s.LatestTimestamp(),
		Value:     atr,
	}, nil
}
