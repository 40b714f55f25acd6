package filters

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, fs, freq, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return x
}

// centralAmplitude estimates a sinusoid amplitude from the middle half,
// away from any edge transient.
func centralAmplitude(x []float64) float64 {
	mid := x[len(x)/4 : 3*len(x)/4]
	sumSq := 0.0
	for _, v := range mid {
		sumSq += v * v
	}
	return math.Sqrt(2 * sumSq / float64(len(mid)))
}

func TestButterworthLowpassDCGain(t *testing.T) {
	for _, order := range []int{1, 2, 3, 4, 5} {
		sections, err := ButterworthLowpass(order, 100, 1000)
		require.NoError(t, err)
		assert.Len(t, sections, (order+1)/2)

		f := NewSOSFilter(sections...)
		assert.InDelta(t, 1.0, f.Magnitude(0, 1000), 1e-9, "order %d", order)
		assert.InDelta(t, math.Sqrt(0.5), f.Magnitude(100, 1000), 1e-9, "-3 dB at cutoff, order %d", order)
	}
}

func TestButterworthHighpassNyquistGain(t *testing.T) {
	sections, err := ButterworthHighpass(4, 50, 1000)
	require.NoError(t, err)

	f := NewSOSFilter(sections...)
	assert.InDelta(t, 1.0, f.Magnitude(500, 1000), 1e-9)
	assert.InDelta(t, 0.0, f.Magnitude(0, 1000), 1e-9)
	assert.InDelta(t, math.Sqrt(0.5), f.Magnitude(50, 1000), 1e-9)
}

func TestButterworthRejectsBadDesign(t *testing.T) {
	_, err := ButterworthLowpass(0, 10, 100)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
	_, err = ButterworthLowpass(2, 60, 100)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestFiltFiltZeroPhase(t *testing.T) {
	const fs = 1000.0
	x := sine(4000, fs, 20, 1)

	sections, err := ButterworthLowpass(4, 100, fs)
	require.NoError(t, err)
	y, err := NewSOSFilter(sections...).FiltFilt(x)
	require.NoError(t, err)
	require.Len(t, y, len(x))

	// a zero-phase pass leaves the passband sinusoid in place
	for i := 1000; i < 3000; i++ {
		assert.InDelta(t, x[i], y[i], 0.01)
	}
}

func TestFiltFiltConstantInput(t *testing.T) {
	x := make([]float64, 200)
	for i := range x {
		x[i] = 3.5
	}
	sections, err := ButterworthLowpass(4, 50, 1000)
	require.NoError(t, err)

	y, err := NewSOSFilter(sections...).FiltFilt(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, y, 1e-9, "steady-state initial conditions remove the edge transient")
}

func TestBandpassPreservesInBandSinusoid(t *testing.T) {
	const fs = 1000.0
	x := sine(10000, fs, 50, 2.0)

	y, err := Bandpass(x, 25, 100, fs)
	require.NoError(t, err)
	require.Len(t, y, len(x))

	assert.GreaterOrEqual(t, centralAmplitude(y), 0.95*2.0)
}

func TestBandpassAttenuatesOutOfBandSinusoid(t *testing.T) {
	const fs = 1000.0
	x := sine(10000, fs, 50, 2.0)

	y, err := Bandpass(x, 150, 300, fs)
	require.NoError(t, err)

	assert.LessOrEqual(t, centralAmplitude(y), 0.05*2.0)
}

func TestBandpassDegradesToSingleEdge(t *testing.T) {
	const fs = 1000.0

	lp, err := NewBandpassFilter(0, 100, fs)
	require.NoError(t, err)
	assert.Equal(t, Lowpass, lp.Mode())
	assert.InDelta(t, 1.0, lp.GetFrequencyResponse(0), 1e-9)

	hp, err := NewBandpassFilter(10, fs/2, fs)
	require.NoError(t, err)
	assert.Equal(t, Highpass, hp.Mode())
	assert.InDelta(t, 0.0, hp.GetFrequencyResponse(0), 1e-9)

	pass, err := NewBandpassFilter(0, fs, fs)
	require.NoError(t, err)
	assert.Equal(t, PassThrough, pass.Mode())

	x := []float64{1, 2, 3}
	y, err := pass.Apply(x)
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestBandpassInsufficientData(t *testing.T) {
	bf, err := NewBandpassFilter(10, 100, 1000)
	require.NoError(t, err)

	// two 4th-order edges -> four biquads -> padlen 27
	assert.Equal(t, 28, bf.MinLength())

	_, err = bf.Apply(make([]float64, 27))
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	_, err = bf.Apply(make([]float64, 28))
	assert.NoError(t, err)
}

func TestBandpassRejectsInvertedBand(t *testing.T) {
	_, err := NewBandpassFilter(100, 10, 1000)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestApplyRowsKeepsShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([][]float64, 3)
	for i := range rows {
		rows[i] = make([]float64, 300)
		for j := range rows[i] {
			rows[i][j] = rng.NormFloat64()
		}
	}

	bf, err := NewBandpassFilter(5, 100, 1000)
	require.NoError(t, err)
	out, err := bf.ApplyRows(rows)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, row := range out {
		assert.Len(t, row, 300)
	}
}
