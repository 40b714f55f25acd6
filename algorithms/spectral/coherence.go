package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// CoherenceResult is the magnitude-squared coherence between two channels.
type CoherenceResult struct {
	Frequencies []float64 `json:"frequencies"`
	Coherence   []float64 `json:"coherence"` // [0, 1]
	Segments    int       `json:"segments"`
}

type crossSums struct {
	pxx, pyy []float64
	pxy      []complex128
	count    int
}

func (p *welchPlan) accumulateCross(x, y []float64, s *crossSums) {
	nseg := p.segments(len(x))
	for k := 0; k < nseg; k++ {
		start := k * p.step
		cx := p.transform(x[start : start+p.nperseg])
		cy := p.transform(y[start : start+p.nperseg])
		for i := range cx {
			s.pxx[i] += real(cx[i])*real(cx[i]) + imag(cx[i])*imag(cx[i])
			s.pyy[i] += real(cy[i])*real(cy[i]) + imag(cy[i])*imag(cy[i])
			s.pxy[i] += cmplx.Conj(cx[i]) * cy[i]
		}
	}
	s.count += nseg
}

func (s *crossSums) coherence() []float64 {
	c := make([]float64, len(s.pxx))
	for i := range c {
		den := s.pxx[i] * s.pyy[i]
		if den <= 0 {
			continue
		}
		mag := cmplx.Abs(s.pxy[i])
		c[i] = mag * mag / den
	}
	return c
}

// Coherence estimates |Pxy|²/(Pxx·Pyy) with Welch segmenting. Scaling
// constants cancel in the ratio, so raw periodogram sums are used.
func Coherence(x, y []float64, sampleRate float64, cfg WelchConfig) (*CoherenceResult, error) {
	if len(x) != len(y) {
		return nil, common.LengthMismatch(len(x), len(y))
	}
	return CDCoherence([][]float64{x}, [][]float64{y}, sampleRate, cfg)
}

// CDCoherence pools the cross and auto spectra of every CD sample pair
// before forming the ratio.
func CDCoherence(xs, ys [][]float64, sampleRate float64, cfg WelchConfig) (*CoherenceResult, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return nil, common.ErrEmptySelection
	}
	if len(xs) != len(ys) {
		return nil, common.LengthMismatch(len(xs), len(ys))
	}
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}

	shortest := len(xs[0])
	for i := range xs {
		if len(xs[i]) != len(ys[i]) {
			return nil, common.LengthMismatch(len(xs[i]), len(ys[i]))
		}
		shortest = min(shortest, len(xs[i]))
	}

	p, err := newWelchPlan(cfg, shortest)
	if err != nil {
		return nil, err
	}

	sums := &crossSums{
		pxx: make([]float64, p.bins()),
		pyy: make([]float64, p.bins()),
		pxy: make([]complex128, p.bins()),
	}
	for i := range xs {
		p.accumulateCross(xs[i], ys[i], sums)
	}

	return &CoherenceResult{
		Frequencies: Frequencies(p.nperseg, sampleRate),
		Coherence:   sums.coherence(),
		Segments:    sums.count,
	}, nil
}
