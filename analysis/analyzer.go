package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/filters"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// Analyzer runs the paper machine analyses over a measurement. It holds no
// measurement state; every call takes the measurement and the window
// configuration explicitly. Not safe for concurrent use with a measurement
// that is being re-segmented.
type Analyzer struct {
	logger logging.Logger
}

// NewAnalyzer creates an analyzer logging through the global logger.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithLogger(logging.WithFields(logging.Fields{
		"component": "paper_analyzer",
	}))
}

// NewAnalyzerWithLogger creates an analyzer with an explicit logger.
func NewAnalyzerWithLogger(logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Analyzer{logger: logger}
}

func (a *Analyzer) callLogger(function string, cfg *config.AnalysisConfig) logging.Logger {
	return a.logger.WithFields(logging.Fields{
		"function":    function,
		"channel":     cfg.Channel,
		"orientation": cfg.Orientation,
	})
}

// recoverable errors are the caller's to handle by skipping the refresh.
func isRecoverable(err error) bool {
	return errors.Is(err, common.ErrInsufficientData) ||
		errors.Is(err, common.ErrWindowTooLarge) ||
		errors.Is(err, common.ErrEmptySelection)
}

// fail logs err at Warn for recoverable conditions and at Error otherwise.
func fail(logger logging.Logger, err error, msg string) error {
	if isRecoverable(err) {
		logger.Warn(msg, logging.Fields{"error": err.Error()})
	} else {
		logger.Error(err, msg)
	}
	return err
}

func checkInputs(m *measurement.Measurement, cfg *config.AnalysisConfig) error {
	if m == nil {
		return common.InvalidParameter("measurement is nil")
	}
	if cfg == nil {
		return common.InvalidParameter("analysis config is nil")
	}
	return cfg.Validate()
}

// newFilter builds the configured band filter. A zero high cutoff means no
// lowpass edge.
func newFilter(fc config.FilterConfig, sampleRate float64) (*filters.BandpassFilter, error) {
	high := fc.High
	if high <= 0 {
		high = math.Inf(1)
	}
	return filters.NewBandpassFilterWithOrder(fc.Low, high, sampleRate, fc.Order)
}

// mdTrace returns the range-selected, filtered MD trace of a channel and
// its distance axis.
func mdTrace(m *measurement.Measurement, cfg *config.AnalysisConfig, channel string) ([]float64, []float64, error) {
	if _, err := m.Channel(channel); err != nil {
		return nil, nil, err
	}
	sel := m
	if cfg.Range[1] > 0 {
		var err error
		sel, err = m.Range(cfg.Range[0], cfg.Range[1])
		if err != nil {
			return nil, nil, err
		}
	}

	bf, err := newFilter(cfg.Filter, m.SampleRate())
	if err != nil {
		return nil, nil, err
	}
	raw, _ := sel.Channel(channel)
	filtered, err := bf.Apply(raw)
	if err != nil {
		return nil, nil, err
	}
	return filtered, sel.Distances, nil
}

// cdSelection applies the sample selection and the CD range.
func cdSelection(m *measurement.Measurement, cfg *config.AnalysisConfig) (*measurement.Measurement, error) {
	if !m.IsSegmented() || m.NumSamples() == 0 {
		return nil, fmt.Errorf("measurement has no CD samples: %w", common.ErrEmptySelection)
	}
	sel := m
	var err error
	if len(cfg.SelectedSamples) > 0 {
		if sel, err = sel.SelectSamples(cfg.SelectedSamples); err != nil {
			return nil, err
		}
	}
	if cfg.Range[1] > 0 {
		if sel, err = sel.CDRange(cfg.Range[0], cfg.Range[1]); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// cdRows returns the selected, filtered CD samples of a channel.
func cdRows(m *measurement.Measurement, cfg *config.AnalysisConfig, channel string) ([][]float64, []float64, error) {
	sel, err := cdSelection(m, cfg)
	if err != nil {
		return nil, nil, err
	}
	rows, err := sel.Samples(channel)
	if err != nil {
		return nil, nil, err
	}

	bf, err := newFilter(cfg.Filter, m.SampleRate())
	if err != nil {
		return nil, nil, err
	}
	filtered, err := bf.ApplyRows(rows)
	if err != nil {
		return nil, nil, err
	}
	return filtered, sel.CDDistances, nil
}

// rawCDRows is cdRows without the band filter.
func rawCDRows(m *measurement.Measurement, cfg *config.AnalysisConfig, channel string) ([][]float64, error) {
	sel, err := cdSelection(m, cfg)
	if err != nil {
		return nil, err
	}
	return sel.Samples(channel)
}

// rawMDTrace is mdTrace without the band filter.
func rawMDTrace(m *measurement.Measurement, cfg *config.AnalysisConfig, channel string) ([]float64, error) {
	sel := m
	if cfg.Range[1] > 0 {
		var err error
		if sel, err = m.Range(cfg.Range[0], cfg.Range[1]); err != nil {
			return nil, err
		}
	}
	return sel.Channel(channel)
}
