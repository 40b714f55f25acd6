package config

import (
	"encoding/json"
	"fmt"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/spectral"
	"github.com/RyanBlaney/sonido-paper/algorithms/windowing"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// Orientation selects the MD or CD flavor of an analysis.
type Orientation string

const (
	MD Orientation = "MD"
	CD Orientation = "CD"
)

// FilterConfig is the bandpass applied before every analysis. A zero Low
// or a High at or above Nyquist disables that edge.
type FilterConfig struct {
	Low   float64 `json:"low"`  // 1/m
	High  float64 `json:"high"` // 1/m
	Order int     `json:"order"`
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{Low: 0, High: 0, Order: 4}
}

func (c FilterConfig) Validate() error {
	if c.Low < 0 || c.High < 0 {
		return common.InvalidParameter("filter cutoffs must be >= 0: [%f, %f]", c.Low, c.High)
	}
	if c.Low > 0 && c.High > 0 && c.Low >= c.High {
		return common.InvalidParameter("filter low %f must be below high %f", c.Low, c.High)
	}
	if c.Order < 1 {
		return common.InvalidParameter("filter order must be >= 1: %d", c.Order)
	}
	return nil
}

// SpectrumConfig drives the spectrum, spectrogram and coherence views.
type SpectrumConfig struct {
	NPerSeg          int                  `json:"nperseg"`
	Overlap          float64              `json:"overlap"`
	Window           windowing.WindowType `json:"window"`
	AmplitudeScaling float64              `json:"amplitude_scaling"`

	FreqRange [2]float64        `json:"freq_range"` // display, 1/m
	PeakMode  spectral.PeakMode `json:"peak_mode"`
	MaxPeaks  int               `json:"max_peaks"`
}

// DefaultSpectrumConfig returns the defaults for one orientation. CD
// samples are short, so CD uses a shorter segment.
func DefaultSpectrumConfig(o Orientation) SpectrumConfig {
	cfg := SpectrumConfig{
		NPerSeg:          2000,
		Overlap:          0.5,
		Window:           windowing.WindowHann,
		AmplitudeScaling: 1.0,
		FreqRange:        [2]float64{0, 0},
		PeakMode:         spectral.SinglePeak,
		MaxPeaks:         5,
	}
	if o == CD {
		cfg.NPerSeg = 256
		cfg.Overlap = 0.5
	}
	return cfg
}

// Welch converts to the estimator configuration.
func (c SpectrumConfig) Welch() spectral.WelchConfig {
	return spectral.WelchConfig{
		NPerSeg:          c.NPerSeg,
		Overlap:          c.Overlap,
		Window:           c.Window,
		AmplitudeScaling: c.AmplitudeScaling,
	}
}

func (c SpectrumConfig) Validate() error {
	if c.NPerSeg < 2 {
		return common.InvalidParameter("nperseg must be >= 2: %d", c.NPerSeg)
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return common.InvalidParameter("overlap must be in [0, 1): %f", c.Overlap)
	}
	if _, err := windowing.New(c.Window, 2); err != nil {
		return err
	}
	if c.AmplitudeScaling < 0 {
		return common.InvalidParameter("amplitude scaling must be >= 0: %f", c.AmplitudeScaling)
	}
	if c.FreqRange[1] != 0 && c.FreqRange[1] < c.FreqRange[0] {
		return common.InvalidParameter("frequency range [%f, %f] is inverted", c.FreqRange[0], c.FreqRange[1])
	}
	if c.PeakMode == spectral.MultiPeak && c.MaxPeaks < 1 {
		return common.InvalidParameter("max peaks must be >= 1 in multi-peak mode: %d", c.MaxPeaks)
	}
	return nil
}

// SegmentationConfig configures CD sample detection.
type SegmentationConfig struct {
	PeakChannel     string  `json:"peak_channel"`
	Threshold       float64 `json:"threshold"`
	TapeWidth       float64 `json:"tape_width"`        // m, trimmed from both sample ends
	MinTapeWidth    float64 `json:"min_tape_width"`    // m
	MinSampleLength float64 `json:"min_sample_length"` // m
	MaxSampleLength float64 `json:"max_sample_length"` // m
}

func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		TapeWidth:       0.05,
		MinTapeWidth:    0.01,
		MinSampleLength: 0.3,
		MaxSampleLength: 12,
	}
}

// Detection converts to the detector parameters.
func (c SegmentationConfig) Detection() measurement.DetectionParams {
	return measurement.DetectionParams{
		Threshold:       c.Threshold,
		MinTapeWidth:    c.MinTapeWidth,
		MinSampleLength: c.MinSampleLength,
		MaxSampleLength: c.MaxSampleLength,
	}
}

func (c SegmentationConfig) Validate() error {
	if c.PeakChannel == "" {
		return common.InvalidParameter("peak channel is required")
	}
	if c.TapeWidth < 0 {
		return common.InvalidParameter("tape width must be >= 0: %f", c.TapeWidth)
	}
	return c.Detection().Validate()
}

// HarmonicMethod selects the fundamental frequency refinement.
type HarmonicMethod string

const (
	MethodNLS HarmonicMethod = "nls"
	MethodHS  HarmonicMethod = "hs"
)

// HarmonicConfig drives frequency refinement and mean-revolution fitting.
type HarmonicConfig struct {
	Method       HarmonicMethod `json:"method"`
	NumHarmonics int            `json:"num_harmonics"`
	SearchRange  float64        `json:"search_range"` // 1/m, NLS half width
	Step         float64        `json:"step"`         // 1/m, NLS grid
	HalfWidth    float64        `json:"half_width"`   // 1/m, HS half width; 0 means HSBins bins
}

// HSBins is the HS half width, in FFT bins of the analyzed trace, used when
// HalfWidth is 0.
const HSBins = 3

// HSHalfWidth resolves the HS half width for a trace of n samples.
func (c HarmonicConfig) HSHalfWidth(n int, sampleRate float64) float64 {
	if c.HalfWidth > 0 || n <= 0 {
		return c.HalfWidth
	}
	return HSBins * sampleRate / float64(n)
}

func DefaultHarmonicConfig() HarmonicConfig {
	return HarmonicConfig{
		Method:       MethodHS,
		NumHarmonics: 5,
		SearchRange:  0.05,
		Step:         0.001,
		HalfWidth:    0,
	}
}

func (c HarmonicConfig) Validate() error {
	switch c.Method {
	case MethodNLS:
		if c.Step <= 0 || c.SearchRange < 0 {
			return common.InvalidParameter("nls needs step > 0 and search range >= 0: %f, %f", c.Step, c.SearchRange)
		}
	case MethodHS:
		if c.HalfWidth < 0 {
			return common.InvalidParameter("hs half width must be >= 0: %f", c.HalfWidth)
		}
	default:
		return common.InvalidParameter("unknown harmonic method %q", string(c.Method))
	}
	if c.NumHarmonics < 1 {
		return common.InvalidParameter("number of harmonics must be >= 1: %d", c.NumHarmonics)
	}
	return nil
}

// FormationConfig names the channels and window of the formation analysis.
type FormationConfig struct {
	TransmissionChannel string `json:"transmission_channel"`
	BasisWeightChannel  string `json:"basis_weight_channel"`
	WindowSize          int    `json:"window_size"` // samples
}

func DefaultFormationConfig() FormationConfig {
	return FormationConfig{
		TransmissionChannel: "transmission",
		BasisWeightChannel:  "basis_weight",
		WindowSize:          100,
	}
}

func (c FormationConfig) Validate() error {
	if c.TransmissionChannel == "" || c.BasisWeightChannel == "" {
		return common.InvalidParameter("formation needs transmission and basis weight channels")
	}
	if c.WindowSize < 1 {
		return common.InvalidParameter("formation window must be >= 1: %d", c.WindowSize)
	}
	return nil
}

// AnalysisConfig is the full state of one analysis window.
type AnalysisConfig struct {
	Orientation  Orientation        `json:"orientation"`
	Channel      string             `json:"channel"`
	Range        [2]float64         `json:"range"`         // m, zero High means the whole trace
	MachineSpeed float64            `json:"machine_speed"` // m/min, 0 when unknown
	Filter       FilterConfig       `json:"filter"`
	Spectrum     SpectrumConfig     `json:"spectrum"`
	Segmentation SegmentationConfig `json:"segmentation"`
	Harmonic     HarmonicConfig     `json:"harmonic"`
	Formation    FormationConfig    `json:"formation"`

	// Selected CD samples; empty means all.
	SelectedSamples []int `json:"selected_samples,omitempty"`
}

// DefaultAnalysisConfig returns the defaults for one orientation.
func DefaultAnalysisConfig(o Orientation) *AnalysisConfig {
	return &AnalysisConfig{
		Orientation:  o,
		Filter:       DefaultFilterConfig(),
		Spectrum:     DefaultSpectrumConfig(o),
		Segmentation: DefaultSegmentationConfig(),
		Harmonic:     DefaultHarmonicConfig(),
		Formation:    DefaultFormationConfig(),
	}
}

// Validate checks the parts every analysis uses. Segmentation, harmonic and
// formation settings are checked by the analyses that need them.
func (c *AnalysisConfig) Validate() error {
	if c.Orientation != MD && c.Orientation != CD {
		return common.InvalidParameter("unknown orientation %q", string(c.Orientation))
	}
	if c.Range[1] != 0 && c.Range[1] <= c.Range[0] {
		return common.InvalidParameter("analysis range [%f, %f] is inverted", c.Range[0], c.Range[1])
	}
	if c.MachineSpeed < 0 {
		return common.InvalidParameter("machine speed must be >= 0: %f", c.MachineSpeed)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := c.Spectrum.Validate(); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	return nil
}

// FromJSON decodes a possibly partial document over the defaults of the
// orientation it names (MD when absent).
func FromJSON(data []byte) (*AnalysisConfig, error) {
	var head struct {
		Orientation Orientation `json:"orientation"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode analysis config: %w", err)
	}
	if head.Orientation == "" {
		head.Orientation = MD
	}

	cfg := DefaultAnalysisConfig(head.Orientation)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode analysis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SpatialToTemporal converts a spatial frequency (1/m) to Hz at a machine
// speed in m/min. Returns 0 when the speed is unknown.
func SpatialToTemporal(freq, machineSpeed float64) float64 {
	if machineSpeed <= 0 {
		return 0
	}
	return freq * machineSpeed / 60
}

// Wavelength returns 1/freq in m, 0 for non-positive frequencies.
func Wavelength(freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	return 1 / freq
}
