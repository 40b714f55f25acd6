package measurement

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// DetectionParams configures sample-boundary detection on one channel.
type DetectionParams struct {
	Threshold       float64 `json:"threshold"`         // signal units
	MinTapeWidth    float64 `json:"min_tape_width"`    // m
	MinSampleLength float64 `json:"min_sample_length"` // m
	MaxSampleLength float64 `json:"max_sample_length"` // m
}

// Validate checks that the length bounds are ordered and non-negative.
func (p DetectionParams) Validate() error {
	if p.MinTapeWidth < 0 {
		return common.InvalidParameter("min tape width must be >= 0: %f", p.MinTapeWidth)
	}
	if p.MinSampleLength < 0 || p.MaxSampleLength < p.MinSampleLength {
		return common.InvalidParameter("sample length bounds [%f, %f] are invalid",
			p.MinSampleLength, p.MaxSampleLength)
	}
	return nil
}

type crossingState int

const (
	belowThreshold crossingState = iota
	aboveThreshold
)

// peakDetector is the threshold crossing state machine. Crossings are
// judged strictly in order, against the last accepted peak only.
type peakDetector struct {
	params    DetectionParams
	distances []float64

	state    crossingState
	start    int
	accepted bool
	lastEnd  float64
	peaks    []float64
}

func (d *peakDetector) step(i int, value float64, final bool) {
	above := value > d.params.Threshold
	if above && d.state == belowThreshold {
		d.state = aboveThreshold
		d.start = i
	}
	if d.state == aboveThreshold && (!above || final) {
		d.close(i)
		d.state = belowThreshold
	}
}

// close judges the crossing [d.start, end).
func (d *peakDetector) close(end int) {
	startDist := d.distances[d.start]
	endDist := d.distances[end]
	width := endDist - startDist

	if width < d.params.MinTapeWidth {
		return
	}
	if d.accepted {
		gap := startDist - d.lastEnd
		if gap < d.params.MinSampleLength || gap > d.params.MaxSampleLength {
			return
		}
	}

	d.peaks = append(d.peaks, startDist+width/2)
	d.accepted = true
	d.lastEnd = endDist
}

// DetectPeaks finds tape marks as runs of signal above the threshold and
// returns the center distance of every accepted run. A run is accepted when
// it is at least MinTapeWidth wide and, unless it is the first, starts
// between MinSampleLength and MaxSampleLength after the end of the last
// accepted run. No accepted run yields an empty list.
func DetectPeaks(signal, distances []float64, params DetectionParams) ([]float64, error) {
	if len(signal) != len(distances) {
		return nil, common.LengthMismatch(len(signal), len(distances))
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	d := &peakDetector{params: params, distances: distances}
	for i, v := range signal {
		d.step(i, v, i == len(signal)-1)
	}

	if d.peaks == nil {
		return []float64{}, nil
	}
	return d.peaks, nil
}
