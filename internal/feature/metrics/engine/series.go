// Package engine computes risk and performance metrics from daily candles.
//
// Every computation takes its configuration explicitly and reports validation
// gates (too little data, degenerate input) as returned errors from the
// metrics domain package.
package engine

import (
	"fmt"
	"math"

	candle "stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/metrics/domain"
)

// Series is an ordered candle sequence for one symbol.
// Timestamps are strictly ascending, so there are no duplicates.
type Series struct {
	symbol  string
	candles []candle.Candle
}

// NewSeries validates candles and wraps them in a Series.
// Candles with an empty Symbol are attributed to symbol. Every price must be
// finite and positive.
func NewSeries(symbol string, candles []candle.Candle) (Series, error) {
	cs := make([]candle.Candle, len(candles))
	copy(cs, candles)
	for i := range cs {
		if cs[i].Symbol == "" {
			cs[i].Symbol = symbol
		} else if cs[i].Symbol != symbol {
			return Series{}, fmt.Errorf("%w: candle %d belongs to %s, not %s", domain.ErrInvalidSeries, i, cs[i].Symbol, symbol)
		}
		if !positivePrices(cs[i]) {
			return Series{}, fmt.Errorf("%w: %s candle %d has a non-positive price (o=%v h=%v l=%v c=%v)",
				domain.ErrInvalidSeries, symbol, i, cs[i].Open, cs[i].High, cs[i].Low, cs[i].Close)
		}
		if i > 0 && !cs[i].Time.After(cs[i-1].Time) {
			return Series{}, fmt.Errorf("%w: %s timestamps not strictly ascending at index %d", domain.ErrInvalidSeries, symbol, i)
		}
	}
	return Series{symbol: symbol, candles: cs}, nil
}

func positivePrices(c candle.Candle) bool {
	for _, p := range [...]float64{c.Open, c.High, c.Low, c.Close} {
		if !(p > 0) || math.IsInf(p, 0) {
			return false
		}
	}
	return true
}

// Symbol returns the series symbol.
func (s Series) Symbol() string { return s.symbol }

// Len returns the number of candles.
func (s Series) Len() int { return len(s.candles) }

// Candles returns a copy of the candles.
func (s Series) Candles() []candle.Candle {
	out := make([]candle.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}

// LatestTimestamp returns the epoch seconds of the last candle, or 0 for an empty series.
func (s Series) LatestTimestamp() int64 {
	if len(s.candles) == 0 {
		return 0
	}
	return s.candles[len(s.candles)-1].Time.Unix()
}

// Tail returns a series holding the last n candles (all of them if n exceeds the length).
func (s Series) Tail(n int) Series {
	if n >= len(s.candles) || n < 0 {
		return s
	}
	return Series{symbol: s.symbol, candles: s.candles[len(s.candles)-n:]}
}
