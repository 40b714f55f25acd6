package spectral

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/windowing"
)

// logFloor keeps log|X| finite for empty bins.
const logFloor = 1e-12

// Cepstrum is a real cepstrum over quefrency in meters.
type Cepstrum struct {
	Quefrencies []float64 `json:"quefrencies"` // m
	Values      []float64 `json:"values"`
}

// RealCepstrum returns the first half of real(ifft(log|fft(w*x)|)) for the
// mean-removed signal. A periodic pattern with spatial period T shows up as
// a peak at quefrency T.
func RealCepstrum(signal []float64, sampleRate float64, window windowing.WindowType) (*Cepstrum, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	if len(signal) < 4 {
		return nil, common.InsufficientData("cepstrum", len(signal), 4)
	}

	w, err := windowing.New(window, len(signal))
	if err != nil {
		return nil, err
	}
	x := common.RemoveMean(signal)
	if err := w.ApplyInPlace(x); err != nil {
		return nil, err
	}

	f := NewFFT()
	spectrum := f.Compute(x)
	logMag := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		logMag[i] = complex(math.Log(cmplx.Abs(c)+logFloor), 0)
	}
	full := f.ComputeInverseReal(logMag)

	half := len(full) / 2
	return &Cepstrum{
		Quefrencies: common.Arange(half, 1/sampleRate),
		Values:      full[:half],
	}, nil
}
