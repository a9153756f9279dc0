package engine

import (
	"fmt"
	"math"

	"stock_metrics/internal/feature/metrics/domain"
)

// SimpleReturns returns (close[i+1]-close[i])/close[i] for consecutive candles.
func SimpleReturns(s Series) ([]float64, error) {
	closes, err := returnCloses(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(closes)-1)
	for i := 0; i < len(closes)-1; i++ {
		if closes[i] == 0 {
			return nil, fmt.Errorf("%w: %s close is zero at index %d", domain.ErrDegenerateSeries, s.Symbol(), i)
		}
		out[i] = (closes[i+1] - closes[i]) / closes[i]
	}
	return out, nil
}

// LogReturns returns ln(close[i+1]/close[i]) for consecutive candles.
func LogReturns(s Series) ([]float64, error) {
	closes, err := returnCloses(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(closes)-1)
	for i := 0; i < len(closes)-1; i++ {
		if closes[i] <= 0 || closes[i+1] <= 0 {
			return nil, fmt.Errorf("%w: %s non-positive close near index %d", domain.ErrDegenerateSeries, s.Symbol(), i)
		}
		out[i] = math.Log(closes[i+1] / closes[i])
	}
	return out, nil
}

func returnCloses(s Series) ([]float64, error) {
	if s.Len() < 2 {
		return nil, &domain.InsufficientCandlesError{Required: 2, Got: s.Len()}
	}
	return s.Closes(), nil
}
