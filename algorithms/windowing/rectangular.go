package windowing

// Boxcar is the rectangular (no taper) window.
type Boxcar struct{ table }

// NewBoxcar creates a rectangular window
func NewBoxcar(size int) *Boxcar {
	return &Boxcar{build(WindowBoxcar, size, true, func(m int) []float64 {
		w := make([]float64, m)
		for i := range w {
			w[i] = 1
		}
		return w
	})}
}
