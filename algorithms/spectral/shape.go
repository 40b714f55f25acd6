package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRolloff is the energy fraction used for the rolloff frequency.
const DefaultRolloff = 0.85

// Shape summarizes where the energy of an amplitude spectrum sits.
type Shape struct {
	Centroid  float64 `json:"centroid"`  // amplitude weighted mean frequency
	Bandwidth float64 `json:"bandwidth"` // amplitude weighted spread around the centroid
	Flatness  float64 `json:"flatness"`  // geometric over arithmetic mean, 0..1
	Crest     float64 `json:"crest"`     // max over RMS
	Rolloff   float64 `json:"rolloff"`   // frequency below which rolloff of the energy lies
}

// flatnessFloor keeps log(0) out of the geometric mean.
const flatnessFloor = 1e-10

// SpectralShape computes the shape descriptors over the given frequency axis.
// A silent spectrum gives the zero Shape.
func SpectralShape(freqs, amps []float64, rolloff float64) Shape {
	if len(freqs) == 0 || len(freqs) != len(amps) || floats.Sum(amps) <= 0 {
		return Shape{}
	}

	var s Shape
	s.Centroid = stat.Mean(freqs, amps)
	spread := 0.0
	for i, f := range freqs {
		d := f - s.Centroid
		spread += amps[i] * d * d
	}
	s.Bandwidth = math.Sqrt(spread / floats.Sum(amps))

	logSum := 0.0
	for _, a := range amps {
		logSum += math.Log(max(a, flatnessFloor))
	}
	if mean := stat.Mean(amps, nil); mean > flatnessFloor {
		s.Flatness = math.Exp(logSum/float64(len(amps))) / mean
	}

	energy := floats.Dot(amps, amps)
	if rms := math.Sqrt(energy / float64(len(amps))); rms > 0 {
		s.Crest = floats.Max(amps) / rms
	}

	target := rolloff * energy
	cumulative := 0.0
	s.Rolloff = freqs[len(freqs)-1]
	for i, a := range amps {
		cumulative += a * a
		if cumulative >= target {
			s.Rolloff = freqs[i]
			break
		}
	}
	return s
}
