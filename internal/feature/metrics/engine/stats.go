package engine

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"stock_metrics/internal/feature/metrics/domain"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, domain.ErrInsufficientData
	}
	return stat.Mean(values, nil), nil
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// A zero result is reported as ErrDegenerateSeries since callers divide by it.
func SampleStdDev(values []float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, fmt.Errorf("%w: sample standard deviation needs 2 values, got %d", domain.ErrInsufficientData, n)
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0, fmt.Errorf("%w: zero variance", domain.ErrDegenerateSeries)
	}
	return sd, nil
}

// Percentile returns the p-th percentile (0..1) using linear interpolation
// between closest ranks (rank p*(n-1)). values is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, domain.ErrInsufficientData
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("percentile must be within [0, 1], got %v", p)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), nil
}
