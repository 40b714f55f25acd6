package spectral

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// Spectrogram holds per-segment amplitude spectra along the MD axis.
type Spectrogram struct {
	Frequencies []float64   `json:"frequencies"` // 1/m
	Positions   []float64   `json:"positions"`   // segment centers, m from trace start
	Amplitude   [][]float64 `json:"amplitude"`   // segment x frequency
	Resolution  float64     `json:"resolution"`  // bin width, 1/m
}

// AmplitudeSpectrogram computes the amplitude spectrum of each Welch
// segment without averaging, using the same detrend, window and scaling as
// Welch so a stationary sinusoid reads the same amplitude in both views.
func AmplitudeSpectrogram(signal []float64, sampleRate float64, cfg WelchConfig) (*Spectrogram, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	p, err := newWelchPlan(cfg, len(signal))
	if err != nil {
		return nil, err
	}

	nseg := p.segments(len(signal))
	result := &Spectrogram{
		Frequencies: Frequencies(p.nperseg, sampleRate),
		Positions:   make([]float64, nseg),
		Amplitude:   make([][]float64, nseg),
		Resolution:  sampleRate / float64(p.nperseg),
	}

	for s := 0; s < nseg; s++ {
		start := s * p.step
		sum := make([]float64, p.bins())
		coeffs := p.transform(signal[start : start+p.nperseg])
		for i, c := range coeffs {
			sum[i] = real(c)*real(c) + imag(c)*imag(c)
		}
		result.Amplitude[s] = AmplitudeFromPower(p.finish(sum, 1), cfg.AmplitudeScaling)
		result.Positions[s] = (float64(start) + float64(p.nperseg)/2) / sampleRate
	}

	return result, nil
}
