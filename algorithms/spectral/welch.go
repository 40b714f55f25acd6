package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/windowing"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// WelchConfig parameterizes every segment-averaging estimator in this package.
type WelchConfig struct {
	NPerSeg int                  `json:"nperseg"`
	Overlap float64              `json:"overlap"` // fraction of NPerSeg, [0, 1)
	Window  windowing.WindowType `json:"window"`

	// AmplitudeScaling multiplies sqrt(2*Pxx) when converting to amplitude.
	AmplitudeScaling float64 `json:"amplitude_scaling"`
}

// DefaultWelchConfig returns a Hann, 50% overlap configuration.
func DefaultWelchConfig(nperseg int) WelchConfig {
	return WelchConfig{
		NPerSeg:          nperseg,
		Overlap:          0.5,
		Window:           windowing.WindowHann,
		AmplitudeScaling: 1.0,
	}
}

// Spectrum is a one-sided spectral estimate.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"` // 1/m
	Power       []float64 `json:"power"`       // Pxx, "spectrum" scaling
	Amplitude   []float64 `json:"amplitude"`   // sqrt(2*Pxx)*scaling
	Segments    int       `json:"segments"`    // periodograms averaged
	Resolution  float64   `json:"resolution"`  // bin width, 1/m
}

// welchPlan holds everything shared by the segments of one estimate.
type welchPlan struct {
	nperseg  int
	noverlap int
	step     int
	window   []float64
	scale    float64 // 1/(Σw)²
	fft      *fourier.FFT
	buf      []float64
}

func newWelchPlan(cfg WelchConfig, available int) (*welchPlan, error) {
	if cfg.NPerSeg <= 1 {
		return nil, common.InvalidParameter("nperseg must be > 1: %d", cfg.NPerSeg)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= 1 {
		return nil, common.InvalidParameter("overlap must be in [0, 1): %f", cfg.Overlap)
	}
	if cfg.NPerSeg >= available {
		return nil, common.WindowTooLarge(cfg.NPerSeg, available)
	}

	w, err := windowing.New(cfg.Window, cfg.NPerSeg)
	if err != nil {
		return nil, err
	}

	noverlap := int(math.Round(float64(cfg.NPerSeg) * cfg.Overlap))
	if noverlap >= cfg.NPerSeg {
		noverlap = cfg.NPerSeg - 1
	}

	sum := windowing.Sum(w)
	if sum == 0 {
		return nil, common.InvalidParameter("window %q sums to zero", string(cfg.Window))
	}

	return &welchPlan{
		nperseg:  cfg.NPerSeg,
		noverlap: noverlap,
		step:     cfg.NPerSeg - noverlap,
		window:   w.GetCoefficients(),
		scale:    1.0 / (sum * sum),
		fft:      fourier.NewFFT(cfg.NPerSeg),
		buf:      make([]float64, cfg.NPerSeg),
	}, nil
}

func (p *welchPlan) bins() int { return p.nperseg/2 + 1 }

func (p *welchPlan) segments(n int) int {
	if n < p.nperseg {
		return 0
	}
	return (n - p.noverlap) / p.step
}

// transform detrends (constant), windows and transforms one segment.
func (p *welchPlan) transform(seg []float64) []complex128 {
	copy(p.buf, seg)
	floats.AddConst(-floats.Sum(p.buf)/float64(p.nperseg), p.buf)
	floats.Mul(p.buf, p.window)
	return p.fft.Coefficients(nil, p.buf)
}

// onesided doubles every bin except DC and, for even lengths, Nyquist.
func (p *welchPlan) onesided(pxx []float64) {
	last := len(pxx)
	if p.nperseg%2 == 0 {
		last--
	}
	for i := 1; i < last; i++ {
		pxx[i] *= 2
	}
}

// accumulate adds the periodograms of every segment of x to sum and returns
// the number of segments added.
func (p *welchPlan) accumulate(x []float64, sum []float64) int {
	nseg := p.segments(len(x))
	for s := 0; s < nseg; s++ {
		start := s * p.step
		coeffs := p.transform(x[start : start+p.nperseg])
		for i, c := range coeffs {
			sum[i] += real(c)*real(c) + imag(c)*imag(c)
		}
	}
	return nseg
}

// finish turns accumulated |X|² sums into the one-sided, averaged Pxx.
func (p *welchPlan) finish(sum []float64, count int) []float64 {
	pxx := make([]float64, len(sum))
	if count == 0 {
		return pxx
	}
	for i, v := range sum {
		pxx[i] = v * p.scale / float64(count)
	}
	p.onesided(pxx)
	return pxx
}

func newSpectrum(p *welchPlan, sampleRate float64, pxx []float64, segments int, scaling float64) *Spectrum {
	return &Spectrum{
		Frequencies: Frequencies(p.nperseg, sampleRate),
		Power:       pxx,
		Amplitude:   AmplitudeFromPower(pxx, scaling),
		Segments:    segments,
		Resolution:  sampleRate / float64(p.nperseg),
	}
}

// Welch estimates the one-sided power spectrum of signal by averaging
// detrended, windowed periodograms. NPerSeg must be strictly smaller than
// len(signal), otherwise ErrWindowTooLarge is returned.
func Welch(signal []float64, sampleRate float64, cfg WelchConfig) (*Spectrum, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	p, err := newWelchPlan(cfg, len(signal))
	if err != nil {
		return nil, err
	}

	sum := make([]float64, p.bins())
	n := p.accumulate(signal, sum)
	return newSpectrum(p, sampleRate, p.finish(sum, n), n, cfg.AmplitudeScaling), nil
}

// WelchAmplitudeSpectrum is Welch reduced to its two axes, with unit
// amplitude scaling.
func WelchAmplitudeSpectrum(signal []float64, sampleRate float64, nperseg int, overlap float64,
	window windowing.WindowType) (frequencies, amplitudes []float64, err error) {
	cfg := WelchConfig{NPerSeg: nperseg, Overlap: overlap, Window: window, AmplitudeScaling: 1.0}
	s, err := Welch(signal, sampleRate, cfg)
	if err != nil {
		return nil, nil, err
	}
	return s.Frequencies, s.Amplitude, nil
}

// CDAverageSpectrum computes one Welch estimate per CD sample row and
// averages the power spectra before converting to amplitude. Averaging
// amplitudes instead would bias the result whenever rows disagree in phase.
func CDAverageSpectrum(rows [][]float64, sampleRate float64, cfg WelchConfig) (*Spectrum, error) {
	if len(rows) == 0 {
		return nil, common.ErrEmptySelection
	}
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}

	shortest := len(rows[0])
	for _, row := range rows[1:] {
		shortest = min(shortest, len(row))
	}
	p, err := newWelchPlan(cfg, shortest)
	if err != nil {
		return nil, err
	}

	mean := make([]float64, p.bins())
	segments := 0
	for _, row := range rows {
		sum := make([]float64, p.bins())
		n := p.accumulate(row, sum)
		floats.Add(mean, p.finish(sum, n))
		segments += n
	}
	floats.Scale(1/float64(len(rows)), mean)

	return newSpectrum(p, sampleRate, mean, segments, cfg.AmplitudeScaling), nil
}
