package measurement

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Profile is the column-wise statistics of a channel's CD samples.
type Profile struct {
	Channel   string    `json:"channel"`
	Distances []float64 `json:"distances"` // m across the web
	Mean      []float64 `json:"mean"`
	Min       []float64 `json:"min"`
	Max       []float64 `json:"max"`
	StdDev    []float64 `json:"std_dev"` // 0 for a single sample
	Samples   int       `json:"samples"`
}

// CDProfile computes mean, min, max and standard deviation at every CD
// position over the selected samples.
func (m *Measurement) CDProfile(channel string) (*Profile, error) {
	rows, err := m.Samples(channel)
	if err != nil {
		return nil, err
	}
	return ProfileOf(channel, rows, m.CDDistances)
}

// ProfileOf computes the profile of an arbitrary sample matrix, such as
// filtered segments.
func ProfileOf(channel string, rows [][]float64, distances []float64) (*Profile, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, common.ErrEmptySelection
	}
	cols := len(rows[0])
	for _, row := range rows {
		if len(row) != cols {
			return nil, common.LengthMismatch(cols, len(row))
		}
	}

	p := &Profile{
		Channel:   channel,
		Distances: distances,
		Mean:      make([]float64, cols),
		Min:       make([]float64, cols),
		Max:       make([]float64, cols),
		StdDev:    make([]float64, cols),
		Samples:   len(rows),
	}

	column := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		p.Min[j] = floats.Min(column)
		p.Max[j] = floats.Max(column)
		if len(column) > 1 {
			p.Mean[j], p.StdDev[j] = stat.MeanStdDev(column, nil)
		} else {
			p.Mean[j] = column[0]
		}
	}
	return p, nil
}
