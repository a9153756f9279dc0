package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

func TestTrueRanges(t *testing.T) {
	t.Parallel()

	s := seriesFromOHLC(t, "AAPL",
		[4]float64{100, 110, 90, 105},  // first candle: high-low = 20
		[4]float64{105, 115, 95, 100},  // max(20, 10, 10) = 20
		[4]float64{100, 130, 120, 125}, // gap up: max(10, 30, 20) = 30
		[4]float64{125, 126, 110, 112}, // max(16, 1, 15) = 16
	)

	assert.Equal(t, []float64{20, 20, 30, 16}, TrueRanges(s))
}

func TestATR(t *testing.T) {
	t.Parallel()

	s := seriesFromOHLC(t, "AAPL",
		[4]float64{100, 110, 90, 105},
		[4]float64{105, 115, 95, 100},
		[4]float64{100, 130, 120, 125},
		[4]float64{125, 126, 110, 112},
	)

	tests := []struct {
		name   string
		window int
		want   float64
	}{
		{"window covers all candles", 4, (20 + 20 + 30 + 16) / 4.0},
		{"trailing window", 2, (30 + 16) / 2.0},
		{"single candle window", 1, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ATR(s, tt.window)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Value, 1e-12)
			assert.Equal(t, entity.KindATR, got.Kind)
			assert.Equal(t, "AAPL", got.Symbol)
			assert.Equal(t, s.LatestTimestamp(), got.Timestamp)
		})
	}
}

func TestATR_FlatSeriesIsZero(t *testing.T) {
	t.Parallel()

	flat := make([][4]float64, 20)
	for i := range flat {
		flat[i] = [4]float64{50, 50, 50, 50}
	}
	got, err := ATR(seriesFromOHLC(t, "FLAT", flat...), DefaultATRWindow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Value)
}

func TestATR_InsufficientCandles(t *testing.T) {
	t.Parallel()

	_, err := ATR(seriesFromCloses(t, "AAPL", 11, 12, 13), 14)
	var ice *domain.InsufficientCandlesError
	require.True(t, errors.As(err, &ice), "got %v", err)
	assert.Equal(t, 14, ice.Required)
	assert.Equal(t, 3, ice.Got)
}
