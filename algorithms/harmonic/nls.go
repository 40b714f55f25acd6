package harmonic

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// NLSRefine refines w0 with a nonlinear least-squares harmonic fit. Every
// candidate in [w0-searchRange, w0+searchRange] (spacing step) is scored by
// the energy of x projected onto its harmonic basis, xᵀZ(ZᵀZ)⁻¹Zᵀx, and the
// best candidate is returned. Candidates at or below zero, and candidates
// with no harmonic below Nyquist, are skipped; w0 comes back unchanged when
// none remain.
func NLSRefine(x []float64, sampleRate, w0, searchRange, step float64, numHarmonics int) (float64, error) {
	if err := validateRefine(x, sampleRate, w0); err != nil {
		return 0, err
	}
	if numHarmonics < 1 {
		return 0, common.InvalidParameter("number of harmonics must be >= 1: %d", numHarmonics)
	}
	if step <= 0 {
		return 0, common.InvalidParameter("nls step must be > 0: %f", step)
	}
	if searchRange < 0 {
		return 0, common.InvalidParameter("nls search range must be >= 0: %f", searchRange)
	}

	centered := common.RemoveMean(x)
	best, bestScore := w0, -1.0

	steps := int(2*searchRange/step + 1e-9)
	for i := 0; i <= steps; i++ {
		candidate := w0 - searchRange + float64(i)*step
		if candidate <= 0 {
			continue
		}

		score, ok, err := projectedEnergy(centered, sampleRate, candidate, numHarmonics)
		if err != nil {
			return 0, err
		}
		if ok && score > bestScore {
			best, bestScore = candidate, score
		}
	}

	return best, nil
}

func projectedEnergy(x []float64, sampleRate, f0 float64, numHarmonics int) (float64, bool, error) {
	z := harmonicBasis(len(x), sampleRate, f0, numHarmonics)
	if z == nil {
		return 0, false, nil
	}
	fitted, err := fit(z, x)
	if err != nil {
		return 0, false, err
	}
	// xᵀPx with P the projector onto span(Z)
	return floats.Dot(x, fitted), true, nil
}

func validateRefine(x []float64, sampleRate, w0 float64) error {
	if len(x) < 2 {
		return common.InsufficientData("frequency refinement", len(x), 2)
	}
	if sampleRate <= 0 {
		return common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	if w0 <= 0 {
		return common.InvalidParameter("initial frequency must be > 0: %f", w0)
	}
	return nil
}
