package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSorted(t *testing.T) {
	a := []float64{0.0, 0.1, 0.2, 0.2, 0.3}

	tests := []struct {
		v     float64
		right bool
		want  int
	}{
		{-1, false, 0},
		{0.2, false, 2},
		{0.2, true, 4},
		{0.25, false, 4},
		{0.3, true, 5},
		{9, false, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchSorted(a, tt.v, tt.right), "v=%v right=%v", tt.v, tt.right)
	}
}

func TestCenterTrim(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5}

	assert.Equal(t, []float64{1, 2, 3, 4}, CenterTrim(data, 4))
	assert.Equal(t, []float64{1, 2, 3}, CenterTrim(data, 3), "odd surplus drops the trailing sample")
	assert.Equal(t, data, CenterTrim(data, 10))
	assert.Empty(t, CenterTrim(data, 0))
}

func TestLinRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2.5*v - 1
	}

	slope, intercept, r2 := LinRegression(x, y)
	assert.InDelta(t, 2.5, slope, 1e-12)
	assert.InDelta(t, -1.0, intercept, 1e-12)
	assert.InDelta(t, 1.0, r2, 1e-12)
}

func TestCorrelationDegenerate(t *testing.T) {
	assert.Zero(t, Correlation([]float64{1, 2}, []float64{1}))
	assert.Zero(t, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}), "constant input has no defined correlation")
	assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
}

func TestRemoveMeanAndArange(t *testing.T) {
	out := RemoveMean([]float64{1, 2, 3})
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, out, 1e-12)

	assert.InDeltaSlice(t, []float64{0, 0.5, 1.0}, Arange(3, 0.5), 1e-12)
	assert.Empty(t, Arange(0, 1))
}

func TestErrorsWrap(t *testing.T) {
	err := InsufficientData("bandpass", 3, 27)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "bandpass")

	assert.ErrorIs(t, WindowTooLarge(512, 100), ErrWindowTooLarge)
	assert.ErrorIs(t, InvalidParameter("order %d", -1), ErrInvalidParameter)
	assert.ErrorIs(t, LengthMismatch(1, 2), ErrLengthMismatch)
}
