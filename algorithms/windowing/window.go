package windowing

import (
	"fmt"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// WindowType names a window function. Names match the ones accepted by the
// analysis settings ("hann", "hamming", ...).
type WindowType string

const (
	WindowHann           WindowType = "hann"
	WindowHamming        WindowType = "hamming"
	WindowBlackman       WindowType = "blackman"
	WindowBlackmanHarris WindowType = "blackmanharris"
	WindowFlatTop        WindowType = "flattop"
	WindowBartlett       WindowType = "bartlett"
	WindowBoxcar         WindowType = "boxcar"
	WindowKaiser         WindowType = "kaiser"
	WindowTukey          WindowType = "tukey"
)

// Window is a precomputed window function.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() WindowType
}

// Option tweaks window generation.
type Option func(*options)

type options struct {
	symmetric bool
	beta      float64
	alpha     float64
}

// Symmetric selects the filter-design form. The default is the periodic
// form used for spectral estimation.
func Symmetric() Option {
	return func(o *options) { o.symmetric = true }
}

// WithBeta sets the Kaiser shape parameter.
func WithBeta(beta float64) Option {
	return func(o *options) { o.beta = beta }
}

// WithAlpha sets the Tukey taper fraction.
func WithAlpha(alpha float64) Option {
	return func(o *options) { o.alpha = alpha }
}

// New builds the named window of the given size.
func New(kind WindowType, size int, opts ...Option) (Window, error) {
	o := options{beta: 14, alpha: 0.5}
	for _, opt := range opts {
		opt(&o)
	}

	if size <= 0 {
		return nil, common.InvalidParameter("window size must be > 0: %d", size)
	}

	switch kind {
	case WindowHann, "hanning", "":
		return NewHann(size, o.symmetric), nil
	case WindowHamming:
		return NewHamming(size, o.symmetric), nil
	case WindowBlackman:
		return NewBlackman(size, o.symmetric), nil
	case WindowBlackmanHarris:
		return NewBlackmanHarris(size, o.symmetric), nil
	case WindowFlatTop:
		return NewFlatTop(size, o.symmetric), nil
	case WindowBartlett:
		return NewBartlett(size, o.symmetric), nil
	case WindowBoxcar, "rectangular":
		return NewBoxcar(size), nil
	case WindowKaiser:
		if o.beta < 0 {
			return nil, common.InvalidParameter("kaiser beta must be >= 0: %f", o.beta)
		}
		return NewKaiser(size, o.beta, o.symmetric), nil
	case WindowTukey:
		if o.alpha < 0 || o.alpha > 1 {
			return nil, common.InvalidParameter("tukey alpha must be in [0,1]: %f", o.alpha)
		}
		return NewTukey(size, o.alpha, o.symmetric), nil
	default:
		return nil, common.InvalidParameter("unknown window %q", string(kind))
	}
}

// table holds the coefficients shared by every window type.
type table struct {
	kind         WindowType
	coefficients []float64
}

// build evaluates a symmetric generator, extending by one point and dropping
// it again for the periodic form.
func build(kind WindowType, size int, symmetric bool, gen func(m int) []float64) table {
	if size == 1 {
		return table{kind: kind, coefficients: []float64{1}}
	}
	if symmetric {
		return table{kind: kind, coefficients: gen(size)}
	}
	return table{kind: kind, coefficients: gen(size + 1)[:size]}
}

func (t table) Apply(signal []float64) []float64 {
	if len(signal) != len(t.coefficients) {
		return nil
	}
	windowed := make([]float64, len(signal))
	floats.MulTo(windowed, signal, t.coefficients)
	return windowed
}

func (t table) ApplyInPlace(signal []float64) error {
	if len(signal) != len(t.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(t.coefficients))
	}
	floats.Mul(signal, t.coefficients)
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (t table) GetCoefficients() []float64 {
	coeffs := make([]float64, len(t.coefficients))
	copy(coeffs, t.coefficients)
	return coeffs
}

func (t table) GetSize() int { return len(t.coefficients) }

func (t table) GetType() WindowType { return t.kind }

// Sum returns Σw, the coherent gain numerator used by spectrum scaling.
func Sum(w Window) float64 {
	return floats.Sum(w.GetCoefficients())
}

