package windowing

// FlatTop trades frequency resolution for amplitude accuracy; useful when
// reading roll-defect amplitudes that fall between bins.
type FlatTop struct{ table }

// NewFlatTop creates a flat top window
func NewFlatTop(size int, symmetric bool) *FlatTop {
	a := []float64{0.21557895, 0.41663158, 0.277263158, 0.083578947, 0.006947368}
	return &FlatTop{build(WindowFlatTop, size, symmetric, cosineSum(a))}
}
