package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// ReconstructMeanPeriod fits a numHarmonics-term harmonic model at the
// given fundamental to the whole of x and returns the first period of the
// fit, round(sampleRate/fundamental) samples long. Noise and everything not
// synchronous with the fundamental averages out, leaving the "mean
// revolution" of a rotating element.
func ReconstructMeanPeriod(x []float64, sampleRate, fundamental float64, numHarmonics int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	if fundamental <= 0 || fundamental > sampleRate/2 {
		return nil, common.InvalidParameter("fundamental must be in (0, %f]: %f", sampleRate/2, fundamental)
	}
	if numHarmonics < 1 {
		return nil, common.InvalidParameter("number of harmonics must be >= 1: %d", numHarmonics)
	}

	period := int(math.Round(sampleRate / fundamental))
	if len(x) < period {
		return nil, common.InsufficientData("mean period", len(x), period)
	}

	z := harmonicBasis(len(x), sampleRate, fundamental, numHarmonics)
	fitted, err := fit(z, x)
	if err != nil {
		return nil, err
	}

	return fitted[:period], nil
}
