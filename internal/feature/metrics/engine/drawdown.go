package engine

import (
	"fmt"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// MaxDrawdown scans closes left to right, tracking the running peak, and
// returns the most negative (close-peak)/peak. The result is <= 0.
func MaxDrawdown(closes []float64) (float64, error) {
	if len(closes) == 0 {
		return 0, domain.ErrInsufficientData
	}
	peak := closes[0]
	worst := 0.0
	for i, c := range closes {
		if c > peak {
			peak = c
		}
		if peak <= 0 {
			return 0, fmt.Errorf("%w: non-positive running peak at index %d", domain.ErrDegenerateSeries, i)
		}
		if dd := (c - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst, nil
}

// Drawdown computes the max drawdown over the trailing window closes.
func Drawdown(s Series, window int) (entity.Result, error) {
	if window < 1 || s.Len() < window {
		return entity.Result{}, &domain.InsufficientCandlesError{Required: window, Got: s.Len()}
	}
	dd, err := MaxDrawdown(s.Tail(window).Closes())
	if err != nil {
		return entity.Result{}, err
	}
	return entity.Result{
		Kind:      entity.KindMaxDrawdown,
		Symbol:    s.Symbol(),
		Timestamp: s.LatestTimestamp(),
		Value:     dd,
	}, nil
}
