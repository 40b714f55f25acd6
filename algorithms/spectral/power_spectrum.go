package spectral

import (
	"math"
)

// AmplitudeFromPower converts a one-sided "spectrum"-scaled power estimate to
// sinusoid amplitude: sqrt(2*Pxx)*scaling. A scaling of 0 is treated as 1.
func AmplitudeFromPower(pxx []float64, scaling float64) []float64 {
	if scaling == 0 {
		scaling = 1
	}
	amp := make([]float64, len(pxx))
	for i, p := range pxx {
		amp[i] = math.Sqrt(2*math.Max(p, 0)) * scaling
	}
	return amp
}
