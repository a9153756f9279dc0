package engine

import (
	"fmt"
	"math"

	candle "stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// Group aggregates consecutive candles into groups of size (e.g. 5 daily candles into a week).
// A group takes the first open and time, the last close, the highest high and the lowest low.
// The trailing group may hold fewer candles.
func Group(s Series, size int) []candle.Candle {
	if size < 1 {
		return nil
	}
	out := make([]candle.Candle, 0, (s.Len()+size-1)/size)
	for start := 0; start < s.Len(); start += size {
		end := min(start+size, s.Len())
		chunk := s.candles[start:end]
		g := candle.Candle{
			Symbol:   s.Symbol(),
			Interval: chunk[0].Interval,
			Time:     chunk[0].Time,
			Open:     chunk[0].Open,
			High:     chunk[0].High,
			Low:      chunk[0].Low,
			Close:    chunk[len(chunk)-1].Close,
		}
		for _, c := range chunk {
			g.High = max(g.High, c.High)
			g.Low = min(g.Low, c.Low)
			g.Volume += c.Volume
		}
		out = append(out, g)
	}
	return out
}

// TrueRangeRatios returns the true range of each candle after the first,
// relative to price: max((h-l)/l, |h-pc|/min(h,pc), |l-pc|/min(l,pc)) where
// pc is the previous close. Ratios are comparable across symbols.
func TrueRangeRatios(candles []candle.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		cur, pc := candles[i], candles[i-1].Close
		out = append(out, max((cur.High-cur.Low)/cur.Low, rangeRatio(cur.High, pc), rangeRatio(cur.Low, pc)))
	}
	return out
}

func rangeRatio(v, ref float64) float64 {
	return math.Abs(v-ref) / min(v, ref)
}

// EMA returns the final exponential moving average of values with smoothing
// 2/(period+1), seeded with the first value.
func EMA(values []float64, period int) (float64, error) {
	if period < 1 || len(values) < period {
		return 0, fmt.Errorf("%w: ema(%d) needs %d values, got %d", domain.ErrInsufficientData, period, period, len(values))
	}
	k := 2 / (float64(period) + 1)
	ema := values[0]
	for _, v := range values[1:] {
		ema = v*k + ema*(1-k)
	}
	return ema, nil
}

// weeklyRatios groups the series and returns the range ratios between
// consecutive groups, requiring at least minGroups groups.
func weeklyRatios(s Series, cfg WeeklyRangeConfig, minGroups int) ([]float64, error) {
	groups := Group(s, cfg.GroupSize)
	if len(groups) < minGroups || len(groups) < 2 {
		return nil, &domain.InsufficientCandlesError{Required: minGroups * cfg.GroupSize, Got: s.Len()}
	}
	return TrueRangeRatios(groups), nil
}

// WeeklyRange groups the series and returns the configured percentile of the
// range ratios between consecutive groups.
func WeeklyRange(s Series, cfg WeeklyRangeConfig) (entity.Result, error) {
	tr, err := weeklyRatios(s, cfg, cfg.MinGroups)
	if err != nil {
		return entity.Result{}, err
	}
	p, err := Percentile(tr, cfg.Percentile)
	if err != nil {
		return entity.Result{}, err
	}
	return entity.Result{
		Kind:      entity.KindWeeklyRange,
		Symbol:    s.Symbol(),
		Timestamp: s.LatestTimestamp(),
		Value:     p,
	}, nil
}

// WeeklyEMA groups the series and returns the EMA(cfg.EMAPeriod) of the range
// ratios between consecutive groups.
func WeeklyEMA(s Series, cfg WeeklyRangeConfig) (entity.Result, error) {
	tr, err := weeklyRatios(s, cfg, cfg.emaGroups())
	if err != nil {
		return entity.Result{}, err
	}
	v, err := EMA(tr, cfg.EMAPeriod)
	if err != nil {
		return entity.Result{}, err
	}
	return entity.Result{
		Kind:      entity.KindWeeklyEMA,
		Symbol:    s.Symbol(),
		Timestamp: s.LatestTimestamp(),
		Value:     v,
	}, nil
}
