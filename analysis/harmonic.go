package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// FrequencyResult is a refined fundamental frequency pick.
type FrequencyResult struct {
	Method     config.HarmonicMethod `json:"method"`
	Initial    float64               `json:"initial"`    // 1/m
	Refined    float64               `json:"refined"`    // 1/m
	Wavelength float64               `json:"wavelength"` // m
	Temporal   float64               `json:"temporal"`   // Hz, 0 if machine speed unknown
}

// RefineFrequency refines a picked frequency w0 on the filtered MD trace of
// cfg.Channel with the configured method. Harmonic analyses always run on
// the MD trace since CD samples are too short to resolve machine periods.
func (a *Analyzer) RefineFrequency(m *measurement.Measurement, cfg *config.AnalysisConfig, w0 float64) (*FrequencyResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	hc := cfg.Harmonic
	if err := hc.Validate(); err != nil {
		return nil, err
	}
	logger := a.callLogger("RefineFrequency", cfg).WithFields(logging.Fields{
		"method":  hc.Method,
		"initial": w0,
	})

	trace, _, err := mdTrace(m, cfg, cfg.Channel)
	if err != nil {
		return nil, fail(logger, err, "Skipping frequency refinement")
	}

	fs := m.SampleRate()
	var refined float64
	switch hc.Method {
	case config.MethodNLS:
		refined, err = harmonic.NLSRefine(trace, fs, w0, hc.SearchRange, hc.Step, hc.NumHarmonics)
	default:
		lo, hi := peakRange(cfg, fs)
		halfwidth := hc.HSHalfWidth(len(trace), fs)
		refined, err = harmonic.HSRefine(trace, fs, w0, halfwidth, lo, hi, hc.NumHarmonics)
	}
	if err != nil {
		return nil, fail(logger, err, "Frequency refinement failed")
	}

	logger.Debug("Frequency refined", logging.Fields{"refined": refined})
	return &FrequencyResult{
		Method:     hc.Method,
		Initial:    w0,
		Refined:    refined,
		Wavelength: config.Wavelength(refined),
		Temporal:   config.SpatialToTemporal(refined, cfg.MachineSpeed),
	}, nil
}

// MeanRevolutionResult is the synchronous average of one period.
type MeanRevolutionResult struct {
	Fundamental   float64   `json:"fundamental"`    // 1/m
	Distances     []float64 `json:"distances"`      // m within the period
	Values        []float64 `json:"values"`         // reconstructed period
	PeriodLength  float64   `json:"period_length"`  // m
	PeriodSeconds float64   `json:"period_seconds"` // 0 if machine speed unknown
	PeakToPeak    float64   `json:"peak_to_peak"`
}

// MeanRevolution reconstructs one period of the filtered MD trace at the
// given fundamental, as used to show roll and felt defects.
func (a *Analyzer) MeanRevolution(m *measurement.Measurement, cfg *config.AnalysisConfig, fundamental float64) (*MeanRevolutionResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("MeanRevolution", cfg).WithFields(logging.Fields{
		"fundamental":   fundamental,
		"num_harmonics": cfg.Harmonic.NumHarmonics,
	})

	trace, _, err := mdTrace(m, cfg, cfg.Channel)
	if err != nil {
		return nil, fail(logger, err, "Skipping mean revolution")
	}
	period, err := harmonic.ReconstructMeanPeriod(trace, m.SampleRate(), fundamental, cfg.Harmonic.NumHarmonics)
	if err != nil {
		return nil, fail(logger, err, "Mean revolution failed")
	}

	result := &MeanRevolutionResult{
		Fundamental:  fundamental,
		Distances:    common.Arange(len(period), m.SampleStep),
		Values:       period,
		PeriodLength: config.Wavelength(fundamental),
	}
	if cfg.MachineSpeed > 0 {
		result.PeriodSeconds = result.PeriodLength / (cfg.MachineSpeed / 60)
	}
	if len(period) > 0 {
		lo, hi := period[0], period[0]
		for _, v := range period {
			lo, hi = min(lo, v), max(hi, v)
		}
		result.PeakToPeak = hi - lo
	}
	return result, nil
}
