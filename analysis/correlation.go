package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/stats"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// CorrelationResult relates cfg.Channel (X) to another channel (Y).
type CorrelationResult struct {
	Pearson float64                       `json:"pearson"`
	BestFit *stats.BestFit                `json:"best_fit"`
	Offset  *stats.CrossCorrelationResult `json:"offset"`
}

// Correlation compares the filtered traces of cfg.Channel and other. CD
// mode compares the mean profiles of the selected samples.
func (a *Analyzer) Correlation(m *measurement.Measurement, cfg *config.AnalysisConfig, other string) (*CorrelationResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("Correlation", cfg).WithFields(logging.Fields{"other": other})

	var x, y []float64
	if cfg.Orientation == config.CD {
		xs, d, err := cdRows(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD correlation")
		}
		ys, _, err := cdRows(m, cfg, other)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD correlation")
		}
		px, err := measurement.ProfileOf(cfg.Channel, xs, d)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD correlation")
		}
		py, err := measurement.ProfileOf(other, ys, d)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD correlation")
		}
		x, y = px.Mean, py.Mean
	} else {
		var err error
		if x, _, err = mdTrace(m, cfg, cfg.Channel); err != nil {
			return nil, fail(logger, err, "Skipping correlation")
		}
		if y, _, err = mdTrace(m, cfg, other); err != nil {
			return nil, fail(logger, err, "Skipping correlation")
		}
	}

	r, err := stats.Pearson(x, y)
	if err != nil {
		return nil, fail(logger, err, "Correlation failed")
	}
	fit, err := stats.BestFitLine(x, y, cfg.Channel, other)
	if err != nil {
		return nil, fail(logger, err, "Best fit failed")
	}
	offset, err := stats.CrossCorrelationOffset(x, y, m.SampleStep)
	if err != nil {
		return nil, fail(logger, err, "Cross-correlation failed")
	}

	return &CorrelationResult{Pearson: r, BestFit: fit, Offset: offset}, nil
}
