package stats

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/spectral"
)

// BestFit is a degree-1 least-squares fit of Y against X.
type BestFit struct {
	XChannel  string  `json:"x_channel"`
	YChannel  string  `json:"y_channel"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// CrossCorrelationResult holds the full cross-correlation of two traces
// and the lag at its maximum.
type CrossCorrelationResult struct {
	Lags        []int     `json:"lags"`
	Values      []float64 `json:"values"`
	PeakLag     int       `json:"peak_lag"` // samples
	PeakValue   float64   `json:"peak_value"`
	Offset      float64   `json:"offset"` // m
	Correlation float64   `json:"correlation"`
}

func checkPair(x, y []float64) error {
	if len(x) != len(y) {
		return common.LengthMismatch(len(x), len(y))
	}
	if len(x) < 2 {
		return common.InsufficientData("correlation", len(x), 2)
	}
	return nil
}

// Pearson returns the correlation coefficient of two equal-length traces.
// Constant traces give 0.
func Pearson(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	return common.Correlation(x, y), nil
}

// BestFitLine fits y = slope*x + intercept.
func BestFitLine(x, y []float64, xName, yName string) (*BestFit, error) {
	if err := checkPair(x, y); err != nil {
		return nil, err
	}
	if common.Variance(x) == 0 {
		return nil, common.InvalidParameter("channel %q is constant, no line fits", xName)
	}

	slope, intercept, r2 := common.LinRegression(x, y)
	return &BestFit{
		XChannel:  xName,
		YChannel:  yName,
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
	}, nil
}

// CrossCorrelationOffset computes the full cross-correlation
// c[lag] = Σ a[n+lag]·b[n] of the mean-removed traces and reports the lag
// of its global maximum in samples and in meters. A positive offset means
// features in a appear that far after the same features in b.
func CrossCorrelationOffset(a, b []float64, sampleStep float64) (*CrossCorrelationResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, common.InsufficientData("cross-correlation", min(len(a), len(b)), 1)
	}
	if sampleStep <= 0 {
		return nil, common.InvalidParameter("sample step must be > 0: %f", sampleStep)
	}

	n1, n2 := len(a), len(b)
	size := common.NextPowerOfTwo(n1 + n2 - 1)

	padded1 := make([]float64, size)
	padded2 := make([]float64, size)
	copy(padded1, common.RemoveMean(a))
	copy(padded2, common.RemoveMean(b))

	f := spectral.NewFFT()
	fa := f.Compute(padded1)
	fb := f.Compute(padded2)
	cross := make([]complex128, size)
	for i := range cross {
		cross[i] = fa[i] * cmplx.Conj(fb[i])
	}
	circular := f.ComputeInverseReal(cross)

	// lags -(n2-1) .. n1-1, negative lags wrap to the end of the buffer
	numLags := n1 + n2 - 1
	result := &CrossCorrelationResult{
		Lags:   make([]int, numLags),
		Values: make([]float64, numLags),
	}
	for i := 0; i < numLags; i++ {
		lag := i - (n2 - 1)
		idx := lag
		if lag < 0 {
			idx += size
		}
		result.Lags[i] = lag
		result.Values[i] = circular[idx]
	}

	peak := common.ArgMax(result.Values)
	result.PeakLag = result.Lags[peak]
	result.PeakValue = result.Values[peak]
	result.Offset = float64(result.PeakLag) * sampleStep
	if n1 == n2 && n1 >= 2 {
		result.Correlation = common.Correlation(a, b)
	}

	return result, nil
}
