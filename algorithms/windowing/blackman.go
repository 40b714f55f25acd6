package windowing

// Blackman window.
type Blackman struct{ table }

// NewBlackman creates a Blackman window
func NewBlackman(size int, symmetric bool) *Blackman {
	return &Blackman{build(WindowBlackman, size, symmetric, cosineSum([]float64{0.42, 0.50, 0.08}))}
}

// BlackmanHarris is the minimum 4-term Blackman-Harris window.
type BlackmanHarris struct{ table }

// NewBlackmanHarris creates a 4-term Blackman-Harris window
func NewBlackmanHarris(size int, symmetric bool) *BlackmanHarris {
	a := []float64{0.35875, 0.48829, 0.14128, 0.01168}
	return &BlackmanHarris{build(WindowBlackmanHarris, size, symmetric, cosineSum(a))}
}
