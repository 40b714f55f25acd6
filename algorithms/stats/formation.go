package stats

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Calibration maps a transmission channel to basis weight:
// bw ≈ Slope*transmission + Intercept.
type Calibration struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Calibrate fits the transmission to basis weight line. Constant or too
// short transmission data cannot be fitted and yields ErrCalibrationFit.
func Calibrate(transmission, basisWeight []float64) (Calibration, error) {
	if len(transmission) != len(basisWeight) {
		return Calibration{}, common.LengthMismatch(len(transmission), len(basisWeight))
	}
	if len(transmission) < 2 {
		return Calibration{}, common.CalibrationFit("need at least 2 points, have %d", len(transmission))
	}
	if v := stat.Variance(transmission, nil); v == 0 || math.IsNaN(v) {
		return Calibration{}, common.CalibrationFit("transmission is constant")
	}

	slope, intercept, r2 := common.LinRegression(transmission, basisWeight)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) {
		return Calibration{}, common.CalibrationFit("degenerate fit")
	}
	return Calibration{Slope: slope, Intercept: intercept, RSquared: r2}, nil
}

// Apply estimates basis weight from transmission.
func (c Calibration) Apply(transmission []float64) []float64 {
	out := make([]float64, len(transmission))
	for i, t := range transmission {
		out[i] = c.Slope*t + c.Intercept
	}
	return out
}

// FormationIndex slides a window of the given size over x and returns
// variance/sqrt(mean) per position (population variance, 0 when the mean is
// not positive). Output index i covers x[i : i+window].
func FormationIndex(x []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, common.InvalidParameter("formation window must be >= 1: %d", window)
	}
	if len(x) < window {
		return nil, common.InsufficientData("formation index", len(x), window)
	}

	out := make([]float64, len(x)-window+1)
	for i := range out {
		mean, variance := stat.PopMeanVariance(x[i:i+window], nil)
		if mean <= 0 {
			continue
		}
		out[i] = variance / math.Sqrt(mean)
	}
	return out, nil
}

// FormationResult is the formation index of one trace or the average over
// CD samples, plus calibration quality.
type FormationResult struct {
	Index       []float64   `json:"index"`
	Calibration Calibration `json:"calibration"`

	// Correlation between measured and transmission-estimated basis weight.
	Correlation float64 `json:"correlation"`
	Samples     int     `json:"samples"`
}

// Formation calibrates transmission against basis weight and computes the
// formation index of the estimated basis weight.
func Formation(transmission, basisWeight []float64, window int) (*FormationResult, error) {
	cal, err := Calibrate(transmission, basisWeight)
	if err != nil {
		return nil, err
	}

	estimated := cal.Apply(transmission)
	index, err := FormationIndex(estimated, window)
	if err != nil {
		return nil, err
	}

	return &FormationResult{
		Index:       index,
		Calibration: cal,
		Correlation: common.Correlation(basisWeight, estimated),
		Samples:     1,
	}, nil
}

// CDFormation calibrates once over all selected samples pooled together,
// computes the formation index per sample and averages the sequences
// position by position.
func CDFormation(transmission, basisWeight [][]float64, window int) (*FormationResult, error) {
	if len(transmission) == 0 {
		return nil, common.ErrEmptySelection
	}
	if len(transmission) != len(basisWeight) {
		return nil, common.LengthMismatch(len(transmission), len(basisWeight))
	}

	var pooledT, pooledBW []float64
	for i := range transmission {
		if len(transmission[i]) != len(basisWeight[i]) {
			return nil, common.LengthMismatch(len(transmission[i]), len(basisWeight[i]))
		}
		pooledT = append(pooledT, transmission[i]...)
		pooledBW = append(pooledBW, basisWeight[i]...)
	}

	cal, err := Calibrate(pooledT, pooledBW)
	if err != nil {
		return nil, err
	}

	var mean []float64
	for _, row := range transmission {
		index, err := FormationIndex(cal.Apply(row), window)
		if err != nil {
			return nil, err
		}
		if mean == nil {
			mean = index
			continue
		}
		n := min(len(mean), len(index))
		mean = mean[:n]
		floats.Add(mean, index[:n])
	}
	floats.Scale(1/float64(len(transmission)), mean)

	return &FormationResult{
		Index:       mean,
		Calibration: cal,
		Correlation: common.Correlation(pooledBW, cal.Apply(pooledT)),
		Samples:     len(transmission),
	}, nil
}
