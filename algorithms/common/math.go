package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Small numeric helpers shared across the kernels, backed by gonum.

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance returns the sample variance (n-1 denominator).
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// RemoveMean returns a copy of data with its mean subtracted.
func RemoveMean(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if len(out) > 0 {
		floats.AddConst(-Mean(data), out)
	}
	return out
}

// Correlation returns the Pearson correlation coefficient of x and y.
// Mismatched or empty inputs yield 0.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0.0
	}
	return r
}

// LinRegression fits y = slope*x + intercept and returns slope, intercept and r².
func LinRegression(x, y []float64) (slope, intercept, rSquared float64) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0, 0
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	rSquared = stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(rSquared) || math.IsInf(rSquared, 0) {
		rSquared = 0.0
	}

	return beta, alpha, rSquared
}

// ArgMax returns the index of the largest element, -1 for an empty slice.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Arange returns [0, step, 2*step, ...) with n elements.
func Arange(n int, step float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// SearchSorted returns the insertion index of v in the ascending slice a.
// With right=false the index is the first position i where a[i] >= v,
// with right=true the first position where a[i] > v.
func SearchSorted(a []float64, v float64, right bool) int {
	if right {
		return sort.Search(len(a), func(i int) bool { return a[i] > v })
	}
	return sort.Search(len(a), func(i int) bool { return a[i] >= v })
}

// CenterTrim returns the centered window of length n from data. When the
// surplus is odd the extra sample is dropped from the end.
func CenterTrim(data []float64, n int) []float64 {
	if n >= len(data) {
		return data
	}
	if n <= 0 {
		return []float64{}
	}
	start := (len(data) - n) / 2
	return data[start : start+n]
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
