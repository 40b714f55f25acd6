package windowing

// Hann is the raised-cosine window, the default for both MD and CD spectra.
type Hann struct{ table }

// NewHann creates a Hann window
func NewHann(size int, symmetric bool) *Hann {
	return &Hann{build(WindowHann, size, symmetric, cosineSum([]float64{0.5, 0.5}))}
}
