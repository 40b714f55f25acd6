package filters

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// SOSFilter is a cascade of second-order sections. It holds no signal
// state between calls, so one instance may filter any number of traces.
type SOSFilter struct {
	sections []Section
}

// NewSOSFilter creates a cascade from the given sections.
func NewSOSFilter(sections ...Section) *SOSFilter {
	s := make([]Section, len(sections))
	copy(s, sections)
	return &SOSFilter{sections: s}
}

// PadLen is the odd-extension length FiltFilt adds to each end.
func (f *SOSFilter) PadLen() int {
	zerosB2, zerosA2 := 0, 0
	for _, s := range f.sections {
		if s.B2 == 0 {
			zerosB2++
		}
		if s.A2 == 0 {
			zerosA2++
		}
	}
	return 3 * (2*len(f.sections) + 1 - min(zerosB2, zerosA2))
}

// MinLength is the shortest input FiltFilt accepts.
func (f *SOSFilter) MinLength() int {
	return f.PadLen() + 1
}

// steadyState returns per-section initial states for a unit step,
// scaled by the DC gain of the sections before each one.
func (f *SOSFilter) steadyState() [][2]float64 {
	zi := make([][2]float64, len(f.sections))
	scale := 1.0
	for i, s := range f.sections {
		z1, z2 := s.steadyState()
		zi[i] = [2]float64{scale * z1, scale * z2}
		scale *= s.dcGain()
	}
	return zi
}

func (f *SOSFilter) filter(x []float64, zi [][2]float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)

	for i, s := range f.sections {
		var z1, z2 float64
		if zi != nil {
			z1, z2 = zi[i][0], zi[i][1]
		}
		for n, in := range y {
			out := s.B0*in + z1
			z1 = s.B1*in - s.A1*out + z2
			z2 = s.B2*in - s.A2*out
			y[n] = out
		}
	}

	return y
}

// FiltFilt applies the cascade forward and backward, giving zero phase and
// squared magnitude response. The input is extended at both ends by odd
// reflection and each pass starts from the steady state matching its first
// sample, which keeps edge transients small.
func (f *SOSFilter) FiltFilt(x []float64) ([]float64, error) {
	padLen := f.PadLen()
	if len(x) <= padLen {
		return nil, common.InsufficientData("filtfilt", len(x), padLen+1)
	}
	if len(f.sections) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	}

	ext := oddExtend(x, padLen)
	zi := f.steadyState()

	y := f.filter(ext, scaleState(zi, ext[0]))
	reverse(y)
	y = f.filter(y, scaleState(zi, y[0]))
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[padLen:padLen+len(x)])
	return out, nil
}

// Magnitude returns the single-pass gain |H| at frequency freq.
func (f *SOSFilter) Magnitude(freq, sampleRate float64) float64 {
	h := complex(1, 0)
	for _, s := range f.sections {
		h *= s.Response(freq, sampleRate)
	}
	return cmplx.Abs(h)
}

func scaleState(zi [][2]float64, v float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for i, z := range zi {
		out[i] = [2]float64{z[0] * v, z[1] * v}
	}
	return out
}

func oddExtend(x []float64, n int) []float64 {
	last := len(x) - 1
	ext := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= n; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
