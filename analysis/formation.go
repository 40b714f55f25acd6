package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/stats"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// Formation computes the formation index from the transmission channel,
// calibrated against the basis weight channel. Raw data is used because
// the index depends on the local mean.
func (a *Analyzer) Formation(m *measurement.Measurement, cfg *config.AnalysisConfig) (*stats.FormationResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	fc := cfg.Formation
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	logger := a.callLogger("Formation", cfg).WithFields(logging.Fields{
		"transmission": fc.TransmissionChannel,
		"basis_weight": fc.BasisWeightChannel,
		"window":       fc.WindowSize,
	})

	var result *stats.FormationResult
	if cfg.Orientation == config.CD {
		tr, err := rawCDRows(m, cfg, fc.TransmissionChannel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD formation")
		}
		bw, err := rawCDRows(m, cfg, fc.BasisWeightChannel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD formation")
		}
		if result, err = stats.CDFormation(tr, bw, fc.WindowSize); err != nil {
			return nil, fail(logger, err, "CD formation failed")
		}
	} else {
		tr, err := rawMDTrace(m, cfg, fc.TransmissionChannel)
		if err != nil {
			return nil, fail(logger, err, "Skipping formation")
		}
		bw, err := rawMDTrace(m, cfg, fc.BasisWeightChannel)
		if err != nil {
			return nil, fail(logger, err, "Skipping formation")
		}
		if result, err = stats.Formation(tr, bw, fc.WindowSize); err != nil {
			return nil, fail(logger, err, "Formation failed")
		}
	}

	logger.Debug("Formation computed", logging.Fields{
		"slope":       result.Calibration.Slope,
		"intercept":   result.Calibration.Intercept,
		"correlation": result.Correlation,
	})
	return result, nil
}
