package filters

import (
	"math"
	"math/cmplx"
)

// Section is one second-order section with a0 normalized to 1. First-order
// sections carry B2 = A2 = 0.
type Section struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// dcGain returns H(z=1).
func (s Section) dcGain() float64 {
	return (s.B0 + s.B1 + s.B2) / (1 + s.A1 + s.A2)
}

// firstOrder reports whether the section is a degenerate first-order one.
func (s Section) firstOrder() bool {
	return s.B2 == 0 && s.A2 == 0
}

// Response evaluates H(e^jw) at frequency f for sample rate fs.
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (s Section) Response(f, fs float64) complex128 {
	w := 2.0 * math.Pi * f / fs
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
	den := 1 + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
	return num / den
}

// steadyState returns the direct-form-II-transposed state reached after a
// unit step has settled.
func (s Section) steadyState() (z1, z2 float64) {
	g := s.dcGain()
	return g - s.B0, s.B2 - s.A2*g
}
