package windowing

import "math"

// Kaiser window with shape parameter beta.
type Kaiser struct {
	table
	beta float64
}

// NewKaiser creates a Kaiser window
func NewKaiser(size int, beta float64, symmetric bool) *Kaiser {
	gen := func(m int) []float64 {
		w := make([]float64, m)
		i0Beta := besselI0(beta)
		den := float64(m - 1)
		for n := 0; n < m; n++ {
			arg := 2.0*float64(n)/den - 1.0
			w[n] = besselI0(beta*math.Sqrt(math.Max(0, 1-arg*arg))) / i0Beta
		}
		return w
	}
	return &Kaiser{table: build(WindowKaiser, size, symmetric, gen), beta: beta}
}

// Beta returns the shape parameter.
func (k *Kaiser) Beta() float64 { return k.beta }

// besselI0 evaluates the zero-order modified Bessel function of the first
// kind by its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2.0

	for k := 1; k < 500; k++ {
		term *= (halfX / float64(k)) * (halfX / float64(k))
		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
