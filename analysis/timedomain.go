package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/stats"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// TimeDomainResult is the filtered trace view of one channel. In CD mode
// Rows holds every selected sample and Values their mean profile.
type TimeDomainResult struct {
	Channel     string             `json:"channel"`
	Unit        string             `json:"unit"`
	Orientation config.Orientation `json:"orientation"`
	Distances   []float64          `json:"distances"`
	Values      []float64          `json:"values"`
	Rows        [][]float64        `json:"rows,omitempty"`
	Summary     stats.Summary      `json:"summary"`
}

// TimeDomain filters the configured channel over the analysis range.
func (a *Analyzer) TimeDomain(m *measurement.Measurement, cfg *config.AnalysisConfig) (*TimeDomainResult, error) {
	if err := checkInputs(m, cfg); err != nil {
		return nil, err
	}
	logger := a.callLogger("TimeDomain", cfg)

	result := &TimeDomainResult{
		Channel:     cfg.Channel,
		Unit:        m.Unit(cfg.Channel),
		Orientation: cfg.Orientation,
	}

	if cfg.Orientation == config.CD {
		rows, distances, err := cdRows(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD time domain")
		}
		profile, err := measurement.ProfileOf(cfg.Channel, rows, distances)
		if err != nil {
			return nil, fail(logger, err, "Skipping CD time domain")
		}
		result.Rows = rows
		result.Distances = distances
		result.Values = profile.Mean
	} else {
		trace, distances, err := mdTrace(m, cfg, cfg.Channel)
		if err != nil {
			return nil, fail(logger, err, "Skipping time domain")
		}
		result.Distances = distances
		result.Values = trace
	}

	summary, err := stats.Summarize(result.Values)
	if err != nil {
		return nil, fail(logger, err, "Skipping time domain")
	}
	result.Summary = summary
	return result, nil
}
