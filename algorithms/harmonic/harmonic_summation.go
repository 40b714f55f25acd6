package harmonic

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/spectral"
)

// HSRefine refines w0 by harmonic summation over the FFT magnitude of x.
// Each bin inside [max(w0-halfwidth, freqMin), min(w0+halfwidth, freqMax)]
// scores its own magnitude plus the magnitudes of its next numHarmonics
// integer multiples that fall below Nyquist. A sub-harmonic of the true
// fundamental collects little energy at its odd multiples, so it loses to
// the fundamental even when its own bin is larger.
//
// When the search window holds no bin, w0 is returned unchanged.
func HSRefine(x []float64, sampleRate, w0, halfwidth, freqMin, freqMax float64, numHarmonics int) (float64, error) {
	if err := validateRefine(x, sampleRate, w0); err != nil {
		return 0, err
	}
	if numHarmonics < 0 {
		return 0, common.InvalidParameter("number of harmonics must be >= 0: %d", numHarmonics)
	}

	lo := math.Max(w0-halfwidth, freqMin)
	hi := math.Min(w0+halfwidth, freqMax)
	if lo > hi {
		return w0, nil
	}

	n := len(x)
	spectrum := spectral.NewFFT().Compute(common.RemoveMean(x))
	resolution := sampleRate / float64(n)
	nyquistBin := n / 2

	first := max(int(math.Ceil(lo/resolution)), 1)
	last := min(int(math.Floor(hi/resolution)), nyquistBin)
	if first > last {
		return w0, nil
	}

	best, bestScore := w0, -1.0
	for k := first; k <= last; k++ {
		score := cmplx.Abs(spectrum[k])
		for h := 2; h <= numHarmonics+1; h++ {
			if h*k >= nyquistBin {
				break
			}
			score += cmplx.Abs(spectrum[h*k])
		}
		if score > bestScore {
			best, bestScore = float64(k)*resolution, score
		}
	}

	return best, nil
}
