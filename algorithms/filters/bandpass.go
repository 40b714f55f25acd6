package filters

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// DefaultOrder is the Butterworth order used on each band edge.
const DefaultOrder = 4

// BandMode records which edges of a BandpassFilter are active.
type BandMode int

const (
	// PassThrough applies no filtering.
	PassThrough BandMode = iota
	// Lowpass keeps frequencies below the high cutoff.
	Lowpass
	// Highpass keeps frequencies above the low cutoff.
	Highpass
	// BandPass keeps frequencies between the two cutoffs.
	BandPass
)

func (m BandMode) String() string {
	switch m {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case BandPass:
		return "bandpass"
	default:
		return "passthrough"
	}
}

// BandpassFilter is a zero-phase Butterworth band filter over spatial
// frequencies. Cutoffs are in cycles per meter and sampleRate is in samples
// per meter (1 / sample step).
//
// A low cutoff <= 0 degrades to a lowpass, a high cutoff at or above Nyquist
// degrades to a highpass, and both together disable filtering.
type BandpassFilter struct {
	lowFreq    float64
	highFreq   float64
	sampleRate float64
	order      int
	mode       BandMode
	sos        *SOSFilter
}

// NewBandpassFilter designs the filter with DefaultOrder per edge.
func NewBandpassFilter(lowFreq, highFreq, sampleRate float64) (*BandpassFilter, error) {
	return NewBandpassFilterWithOrder(lowFreq, highFreq, sampleRate, DefaultOrder)
}

// NewBandpassFilterWithOrder designs the filter with an explicit per-edge order.
func NewBandpassFilterWithOrder(lowFreq, highFreq, sampleRate float64, order int) (*BandpassFilter, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	if order <= 0 {
		return nil, common.InvalidParameter("filter order must be > 0: %d", order)
	}

	nyquist := sampleRate / 2
	useLow := lowFreq > 0
	useHigh := highFreq < nyquist

	if useLow && useHigh && lowFreq >= highFreq {
		return nil, common.InvalidParameter("low cutoff %f must be below high cutoff %f", lowFreq, highFreq)
	}
	if useLow && lowFreq >= nyquist {
		return nil, common.InvalidParameter("low cutoff %f at or above Nyquist %f", lowFreq, nyquist)
	}
	if useHigh && highFreq <= 0 {
		return nil, common.InvalidParameter("high cutoff must be > 0: %f", highFreq)
	}

	bf := &BandpassFilter{
		lowFreq:    lowFreq,
		highFreq:   highFreq,
		sampleRate: sampleRate,
		order:      order,
	}

	var sections []Section
	if useLow {
		hp, err := ButterworthHighpass(order, lowFreq, sampleRate)
		if err != nil {
			return nil, err
		}
		sections = append(sections, hp...)
	}
	if useHigh {
		lp, err := ButterworthLowpass(order, highFreq, sampleRate)
		if err != nil {
			return nil, err
		}
		sections = append(sections, lp...)
	}

	switch {
	case useLow && useHigh:
		bf.mode = BandPass
	case useLow:
		bf.mode = Highpass
	case useHigh:
		bf.mode = Lowpass
	default:
		bf.mode = PassThrough
	}
	bf.sos = NewSOSFilter(sections...)

	return bf, nil
}

// Mode reports which edges are active.
func (bf *BandpassFilter) Mode() BandMode { return bf.mode }

// MinLength is the shortest signal Apply accepts. Zero for a pass-through.
func (bf *BandpassFilter) MinLength() int {
	if bf.mode == PassThrough {
		return 0
	}
	return bf.sos.MinLength()
}

// Apply filters signal forward and backward and returns a new slice of the
// same length. Signals shorter than MinLength fail with ErrInsufficientData.
func (bf *BandpassFilter) Apply(signal []float64) ([]float64, error) {
	if bf.mode == PassThrough {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}
	return bf.sos.FiltFilt(signal)
}

// ApplyRows filters every row of a CD segment matrix independently.
func (bf *BandpassFilter) ApplyRows(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		filtered, err := bf.Apply(row)
		if err != nil {
			return nil, err
		}
		out[i] = filtered
	}
	return out, nil
}

// GetFrequencyResponse returns the zero-phase gain |H(f)|² at a spatial
// frequency in 1/m. The forward-backward pass squares the magnitude and
// cancels the phase.
func (bf *BandpassFilter) GetFrequencyResponse(frequency float64) float64 {
	if bf.mode == PassThrough {
		return 1
	}
	m := bf.sos.Magnitude(frequency, bf.sampleRate)
	return m * m
}

// Bandpass filters signal with DefaultOrder Butterworth edges. It is the
// one-shot form of NewBandpassFilter followed by Apply.
func Bandpass(signal []float64, lowFreq, highFreq, sampleRate float64) ([]float64, error) {
	bf, err := NewBandpassFilter(lowFreq, highFreq, sampleRate)
	if err != nil {
		return nil, err
	}
	return bf.Apply(signal)
}
