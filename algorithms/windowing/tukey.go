package windowing

import "math"

// Tukey is a tapered cosine window; alpha is the tapered fraction.
type Tukey struct {
	table
	alpha float64
}

// NewTukey creates a Tukey window. alpha=0 is a boxcar, alpha=1 a Hann.
func NewTukey(size int, alpha float64, symmetric bool) *Tukey {
	gen := func(m int) []float64 {
		w := make([]float64, m)
		for i := range w {
			w[i] = 1
		}
		if alpha <= 0 {
			return w
		}
		if alpha >= 1 {
			return cosineSum([]float64{0.5, 0.5})(m)
		}

		den := alpha * float64(m-1)
		width := int(math.Floor(den / 2))
		for n := 0; n <= width; n++ {
			w[n] = 0.5 * (1 + math.Cos(math.Pi*(-1+2*float64(n)/den)))
		}
		for n := m - width - 1; n < m; n++ {
			w[n] = 0.5 * (1 + math.Cos(math.Pi*(-2/alpha+1+2*float64(n)/den)))
		}
		return w
	}
	return &Tukey{table: build(WindowTukey, size, symmetric, gen), alpha: alpha}
}

// Alpha returns the taper fraction.
func (t *Tukey) Alpha() float64 { return t.alpha }
