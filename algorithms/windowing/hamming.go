package windowing

// Hamming window.
type Hamming struct{ table }

// NewHamming creates a Hamming window
func NewHamming(size int, symmetric bool) *Hamming {
	return &Hamming{build(WindowHamming, size, symmetric, cosineSum([]float64{0.54, 0.46}))}
}
