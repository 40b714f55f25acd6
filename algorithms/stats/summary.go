package stats

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the time-domain readout of one trace.
type Summary struct {
	N          int     `json:"n"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	PeakToPeak float64 `json:"peak_to_peak"`
	RMS        float64 `json:"rms"`
}

// Summarize computes the readout. StdDev is the sample standard deviation
// and is 0 for a single value.
func Summarize(x []float64) (Summary, error) {
	if len(x) == 0 {
		return Summary{}, common.InsufficientData("summary", 0, 1)
	}

	s := Summary{
		N:    len(x),
		Mean: stat.Mean(x, nil),
		Min:  floats.Min(x),
		Max:  floats.Max(x),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	s.PeakToPeak = s.Max - s.Min
	s.RMS = math.Sqrt(floats.Dot(x, x) / float64(len(x)))
	return s, nil
}

// CVPercent is the coefficient of variation in percent, 0 for a zero mean.
func (s Summary) CVPercent() float64 {
	if s.Mean == 0 {
		return 0
	}
	return 100 * s.StdDev / math.Abs(s.Mean)
}
