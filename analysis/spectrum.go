package analysis

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/spectral"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
	"gonum.org/v1/gonum/floats"
)

// PeakReading is a picked spectral peak with its derived units.
type PeakReading struct {
	spectral.Peak
	Wavelength float64 `json:"wavelength"` // m
	Temporal   float64 `json:"temporal"`   // Hz at machine speed, 0 if unknown
}

// SpectrumResult is the amplitude spectrum of one channel.
type SpectrumResult struct {
	Channel     string             `json:"channel"`
	Orientation config.Orientation `json:"orientation"`
	Spectrum    *spectral.Spectrum `json:"spectrum"`
	Peaks       []PeakReading      `json:"peaks"`
	Shape       spectral.Shape     `json:"shape"` // over the peak range
}

func readings(peaks []spectral.Peak, machineSpeed float64) []PeakReading {
	out := make([]PeakReading, len(peaks))
	for i, p := range peaks {
		out[i] = PeakReading{
			Peak:       p,
			Wavelength: config.Wavelength(p.Frequency),
			Temporal:   config.SpatialToTemporal(p.Frequency, machineSpeed),
		}
	}
	return out
}

// peakRange resolves the configured display range, where a zero upper
// bound means up to Nyquist.
func peakRange(cfg *config.AnalysisConfig, sampleRate float64) (float64, float64) {
	lo, hi := cfg.Spectrum.FreqRange[0], cfg.Spectrum.FreqRange[1]
	if hi <= 0 {
		hi = sampleRate / 2
	}
	return lo, hi
}

func pickPeaks(freqs, amps []float64, cfg *config.AnalysisConfig, sampleRate float64) []PeakReading {
	lo, hi := peakRange(cfg, sampleRate)
	peaks := spectral.FindPeaks(freqs, amps, lo, hi, cfg.Spectrum.PeakMode, cfg.Spectrum.MaxPeaks)
	return readings(peaks, cfg.MachineSpeed)
}

// bandShape describes the spectrum inside the display range.
func bandShape(freqs, amps []float64, cfg *config.AnalysisConfig, sampleRate float64) spectral.Shape {
	lo, hi := peakRange(cfg, sampleRate)
	start := common.SearchSorted(freqs, lo, false)
	end := common.SearchSorted(freqs, hi, true)
	if end <= start {
		return spectral.Shape{}
	}
	return spectral.SpectralShape(freqs[start:end], amps[start:end], spectral.DefaultRolloff)
}

// checkWindow enforces nperseg < available before any estimator runs.
func checkWindow(cfg *config.AnalysisConfig, available int) error {
	if cfg.Spectrum.NPerSeg >= available {
		return common.WindowTooLarge(cfg.Spectrum.NPerSeg, available)
	}
	return nil
}

func shortest(rows [][]float64) int {
	n := len(rows[0])
	for _, row := range rows[1:] {
		n = min(n, len(row))
	}
	return n
}

// Spectrum computes the Welch amplitude spectrum. CD mode averages the
// power spectra of the selected samples.
func (a *Analyzer) Spectrum(m *measurement.Measurement, cfg *config.AnalysisConfig) (*SpectrumResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("Spectrum", cfg)
	fs := m.SampleRate()

	var spec *spectral.Spectrum
	if cfg.Orientation == config.CD {
		rows, _, err := cdRows(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD spectrum")
		}
		if err := checkWindow(cfg, shortest(rows)); err != nil {
			return nil, fail(logger, err, "Skipping CD spectrum")
		}
		if spec, err = spectral.CDAverageSpectrum(rows, fs, cfg.Spectrum.Welch()); err != nil {
			return nil, fail(logger, err, "CD spectrum failed")
		}
	} else {
		trace, _, err := mdTrace(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping MD spectrum")
		}
		if err := checkWindow(cfg, len(trace)); err != nil {
			return nil, fail(logger, err, "Skipping MD spectrum")
		}
		if spec, err = spectral.Welch(trace, fs, cfg.Spectrum.Welch()); err != nil {
			return nil, fail(logger, err, "MD spectrum failed")
		}
	}

	result := &SpectrumResult{
		Channel:     cfg.Channel,
		Orientation: cfg.Orientation,
		Spectrum:    spec,
		Peaks:       pickPeaks(spec.Frequencies, spec.Amplitude, cfg, fs),
		Shape:       bandShape(spec.Frequencies, spec.Amplitude, cfg, fs),
	}

	logger.Debug("Spectrum computed", logging.Fields{
		"segments":   spec.Segments,
		"resolution": spec.Resolution,
		"peaks":      len(result.Peaks),
	})
	return result, nil
}

// SpectrogramResult is a spectrogram of one channel.
type SpectrogramResult struct {
	Channel     string                `json:"channel"`
	Orientation config.Orientation    `json:"orientation"`
	Spectrogram *spectral.Spectrogram `json:"spectrogram"`
}

// Spectrogram computes per-segment spectra along MD. In CD mode each row of
// the result is the Welch spectrum of one sample, positioned at the start
// of that sample along the reel.
func (a *Analyzer) Spectrogram(m *measurement.Measurement, cfg *config.AnalysisConfig) (*SpectrogramResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("Spectrogram", cfg)
	fs := m.SampleRate()

	result := &SpectrogramResult{Channel: cfg.Channel, Orientation: cfg.Orientation}
	if cfg.Orientation == config.MD {
		trace, _, err := mdTrace(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping spectrogram")
		}
		if err := checkWindow(cfg, len(trace)); err != nil {
			return nil, fail(logger, err, "Skipping spectrogram")
		}
		if result.Spectrogram, err = spectral.AmplitudeSpectrogram(trace, fs, cfg.Spectrum.Welch()); err != nil {
			return nil, fail(logger, err, "Spectrogram failed")
		}
		return result, nil
	}

	sel, err := cdSelection(m, cfg)
	if err != nil {
		return nil, fail(logger, err, "Skipping CD spectrogram")
	}
	rows, _, err := cdRows(m, cfg, cfg.Channel)
	if err != nil {
		return nil, fail(logger, err, "Skipping CD spectrogram")
	}
	if err := checkWindow(cfg, shortest(rows)); err != nil {
		return nil, fail(logger, err, "Skipping CD spectrogram")
	}

	sg := &spectral.Spectrogram{
		Positions: make([]float64, len(rows)),
		Amplitude: make([][]float64, len(rows)),
	}
	for i, row := range rows {
		s, err := spectral.Welch(row, fs, cfg.Spectrum.Welch())
		if err != nil {
			return nil, fail(logger, err, "CD spectrogram failed")
		}
		sg.Frequencies, sg.Resolution = s.Frequencies, s.Resolution
		sg.Amplitude[i] = s.Amplitude
		if i < len(sel.SegmentBounds) {
			sg.Positions[i] = sel.SegmentBounds[i].Start
		} else {
			sg.Positions[i] = float64(i)
		}
	}
	result.Spectrogram = sg
	return result, nil
}

// CepstrumResult is the real cepstrum of one channel with quefrency peaks.
type CepstrumResult struct {
	Channel     string             `json:"channel"`
	Orientation config.Orientation `json:"orientation"`
	Cepstrum    *spectral.Cepstrum `json:"cepstrum"`
	Peaks       []spectral.Peak    `json:"peaks"`
}

// Cepstrum computes the real cepstrum; CD mode averages the sample cepstra
// over their common length. Peaks are picked between two samples and half
// the analyzed length.
func (a *Analyzer) Cepstrum(m *measurement.Measurement, cfg *config.AnalysisConfig) (*CepstrumResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("Cepstrum", cfg)
	fs := m.SampleRate()

	var traces [][]float64
	if cfg.Orientation == config.CD {
		rows, _, err := cdRows(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD cepstrum")
		}
		n := shortest(rows)
		for _, row := range rows {
			traces = append(traces, row[:n])
		}
	} else {
		trace, _, err := mdTrace(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping cepstrum")
		}
		traces = [][]float64{trace}
	}

	var mean *spectral.Cepstrum
	for _, trace := range traces {
		c, err := spectral.RealCepstrum(trace, fs, cfg.Spectrum.Window)
		if err != nil {
			return nil, fail(logger, err, "Cepstrum failed")
		}
		if mean == nil {
			mean = c
			continue
		}
		floats.Add(mean.Values, c.Values)
	}
	floats.Scale(1/float64(len(traces)), mean.Values)

	minQ := 2 / fs
	maxQ := math.Inf(1)
	peaks := spectral.FindPeaks(mean.Quefrencies, mean.Values, minQ, maxQ, cfg.Spectrum.PeakMode, cfg.Spectrum.MaxPeaks)

	return &CepstrumResult{
		Channel:     cfg.Channel,
		Orientation: cfg.Orientation,
		Cepstrum:    mean,
		Peaks:       peaks,
	}, nil
}

// CoherenceResult is the coherence between the configured channel and other.
type CoherenceResult struct {
	Channel     string                    `json:"channel"`
	Other       string                    `json:"other"`
	Orientation config.Orientation        `json:"orientation"`
	Coherence   *spectral.CoherenceResult `json:"coherence"`
}

// Coherence computes the magnitude-squared coherence between cfg.Channel and
// other. CD mode pools the cross spectra of all selected samples.
func (a *Analyzer) Coherence(m *measurement.Measurement, cfg *config.AnalysisConfig, other string) (*CoherenceResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("Coherence", cfg).WithFields(logging.Fields{"other": other})
	fs := m.SampleRate()

	var coh *spectral.CoherenceResult
	if cfg.Orientation == config.CD {
		xs, _, err := cdRows(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD coherence")
		}
		ys, _, err := cdRows(m, cfg, other)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD coherence")
		}
		if err := checkWindow(cfg, shortest(xs)); err != nil {
			return nil, fail(logger, err, "Skipping CD coherence")
		}
		if coh, err = spectral.CDCoherence(xs, ys, fs, cfg.Spectrum.Welch()); err != nil {
			return nil, fail(logger, err, "CD coherence failed")
		}
	} else {
		x, _, err := mdTrace(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping coherence")
		}
		y, _, err := mdTrace(m, cfg, other)
		if err != nil {
			return nil, fail(logger, err, "Skipping coherence")
		}
		if err := checkWindow(cfg, len(x)); err != nil {
			return nil, fail(logger, err, "Skipping coherence")
		}
		if coh, err = spectral.Coherence(x, y, fs, cfg.Spectrum.Welch()); err != nil {
			return nil, fail(logger, err, "Coherence failed")
		}
	}

	return &CoherenceResult{
		Channel:     cfg.Channel,
		Other:       other,
		Orientation: cfg.Orientation,
		Coherence:   coh,
	}, nil
}
