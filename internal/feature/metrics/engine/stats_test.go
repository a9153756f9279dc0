package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_metrics/internal/feature/metrics/domain"
)

func TestMean(t *testing.T) {
	t.Parallel()

	m, err := Mean([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)

	_, err = Mean(nil)
	assert.True(t, errors.Is(err, domain.ErrInsufficientData))
}

func TestSampleStdDev(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  []float64
		want    float64
		wantErr error
	}{
		{
			name:   "success: bessel corrected",
			values: []float64{2, 4, 4, 4, 5, 5, 7, 9},
			// sum of squared deviations is 32, n-1 = 7
			want: math.Sqrt(32.0 / 7.0),
		},
		{
			name:   "success: two values",
			values: []float64{1, 3},
			want:   math.Sqrt2,
		},
		{
			name:    "error: single value",
			values:  []float64{1},
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "error: empty",
			values:  nil,
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "error: constant series is degenerate",
			values:  []float64{0.01, 0.01, 0.01},
			wantErr: domain.ErrDegenerateSeries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SampleStdDev(tt.values)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{1, 4},
		{0.5, 2.5},
		{0.25, 1.75},
	}
	for _, tt := range tests {
		got, err := Percentile(values, tt.p)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "p=%v", tt.p)
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "input must not be reordered")

	single, err := Percentile([]float64{7}, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 7.0, single)

	_, err = Percentile(nil, 0.5)
	assert.True(t, errors.Is(err, domain.ErrInsufficientData))

	_, err = Percentile(values, 1.5)
	assert.Error(t, err)
}
