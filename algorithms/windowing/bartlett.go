package windowing

// Bartlett is the triangular window with zero end points.
type Bartlett struct{ table }

// NewBartlett creates a Bartlett window
func NewBartlett(size int, symmetric bool) *Bartlett {
	return &Bartlett{build(WindowBartlett, size, symmetric, bartlett)}
}

func bartlett(m int) []float64 {
	w := make([]float64, m)
	den := float64(m - 1)
	for n := 0; n < m; n++ {
		if float64(n) <= den/2 {
			w[n] = 2 * float64(n) / den
		} else {
			w[n] = 2 - 2*float64(n)/den
		}
	}
	return w
}
