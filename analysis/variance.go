package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/stats"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// CDProfile returns the filtered CD profile statistics of cfg.Channel.
func (a *Analyzer) CDProfile(m *measurement.Measurement, cfg *config.AnalysisConfig) (*measurement.Profile, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("CDProfile", cfg)

	rows, distances, err := cdRows(m, cfg, cfg.Channel)
	if err != nil {
		return nil, fail(logger, err, "Skipping CD profile")
	}
	profile, err := measurement.ProfileOf(cfg.Channel, rows, distances)
	if err != nil {
		return nil, fail(logger, err, "Skipping CD profile")
	}
	return profile, nil
}

// VarianceResult is the variance component analysis of one channel.
type VarianceResult struct {
	Channel  string                  `json:"channel"`
	Unit     string                  `json:"unit"`
	Analysis *stats.VarianceAnalysis `json:"analysis"`
}

// VarianceComponents decomposes the filtered CD samples of cfg.Channel
// into MD, CD and residual variance, over the full width and with the
// edges trimmed.
func (a *Analyzer) VarianceComponents(m *measurement.Measurement, cfg *config.AnalysisConfig) (*VarianceResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("VarianceComponents", cfg)

	rows, _, err := cdRows(m, cfg, cfg.Channel)
	if err != nil {
		return nil, fail(logger, err, "Skipping variance components")
	}
	analysis, err := stats.AnalyzeVariance(rows, stats.DefaultEdgeTrim)
	if err != nil {
		return nil, fail(logger, err, "Variance components failed")
	}

	if analysis.Full.Clipped || analysis.Trimmed.Clipped {
		logger.Debug("Negative variance component clipped to zero", logging.Fields{
			"full_clipped":    analysis.Full.Clipped,
			"trimmed_clipped": analysis.Trimmed.Clipped,
		})
	}

	return &VarianceResult{
		Channel:  cfg.Channel,
		Unit:     m.Unit(cfg.Channel),
		Analysis: analysis,
	}, nil
}
