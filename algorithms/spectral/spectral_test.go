package spectral

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/algorithms/filters"
	"github.com/RyanBlaney/sonido-paper/algorithms/windowing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, sampleRate, freq, amp, phase float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate+phase)
	}
	return x
}

func addNoise(x []float64, sigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v + sigma*rng.NormFloat64()
	}
	return out
}

func TestWelchAmplitudeRoundTrip(t *testing.T) {
	const fs = 1000.0
	x := addNoise(sine(10000, fs, 50, 2.0, 0.3), 0.1, 1)

	freqs, amps, err := WelchAmplitudeSpectrum(x, fs, 2000, 0.5, windowing.WindowHann)
	require.NoError(t, err)
	require.Len(t, amps, 1001)

	peaks := FindPeaks(freqs, amps, 1, 200, SinglePeak, 0)
	require.Len(t, peaks, 1)
	assert.InDelta(t, 50.0, peaks[0].Frequency, 0.5)
	assert.InDelta(t, 2.0, peaks[0].Amplitude, 0.2)
}

func TestWelchSegmentsAndResolution(t *testing.T) {
	x := sine(1000, 100, 10, 1, 0)
	s, err := Welch(x, 100, DefaultWelchConfig(200))
	require.NoError(t, err)

	// step 100, (1000-100)/100 segments
	assert.Equal(t, 9, s.Segments)
	assert.InDelta(t, 0.5, s.Resolution, 1e-12)
	assert.Equal(t, 0.0, s.Frequencies[0])
	assert.InDelta(t, 50.0, s.Frequencies[len(s.Frequencies)-1], 1e-12)
}

func TestWelchWindowTooLarge(t *testing.T) {
	x := sine(500, 100, 10, 1, 0)

	_, err := Welch(x, 100, DefaultWelchConfig(500))
	assert.ErrorIs(t, err, common.ErrWindowTooLarge)

	_, err = Welch(x, 100, DefaultWelchConfig(800))
	assert.ErrorIs(t, err, common.ErrWindowTooLarge)

	_, err = Welch(x, 100, DefaultWelchConfig(499))
	assert.NoError(t, err)
}

func TestWelchInvalidParameters(t *testing.T) {
	x := sine(500, 100, 10, 1, 0)

	cfg := DefaultWelchConfig(100)
	cfg.Overlap = 1
	_, err := Welch(x, 100, cfg)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	cfg = DefaultWelchConfig(100)
	cfg.Window = "nope"
	_, err = Welch(x, 100, cfg)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	_, err = Welch(x, 0, DefaultWelchConfig(100))
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestAmplitudeScaling(t *testing.T) {
	x := sine(4000, 1000, 50, 1, 0)
	cfg := DefaultWelchConfig(1000)

	base, err := Welch(x, 1000, cfg)
	require.NoError(t, err)

	cfg.AmplitudeScaling = 2.5
	scaled, err := Welch(x, 1000, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 2.5*base.Amplitude[50], scaled.Amplitude[50], 1e-9)
	assert.Equal(t, base.Power, scaled.Power)
}

func TestCDAverageKeepsPhaseInvertedPeak(t *testing.T) {
	const fs = 1000.0
	a := sine(4000, fs, 50, 1.5, 0)
	b := sine(4000, fs, 50, 1.5, math.Pi)

	// the rows cancel in the time domain
	for i := range a {
		require.InDelta(t, 0, a[i]+b[i], 1e-9)
	}

	s, err := CDAverageSpectrum([][]float64{a, b}, fs, DefaultWelchConfig(1000))
	require.NoError(t, err)

	peaks := FindPeaks(s.Frequencies, s.Amplitude, 1, 200, SinglePeak, 0)
	require.Len(t, peaks, 1)
	assert.InDelta(t, 50.0, peaks[0].Frequency, 1.0)
	assert.InDelta(t, 1.5, peaks[0].Amplitude, 0.15)
	assert.Equal(t, 14, s.Segments)
}

func TestCDAverageErrors(t *testing.T) {
	_, err := CDAverageSpectrum(nil, 1000, DefaultWelchConfig(100))
	assert.ErrorIs(t, err, common.ErrEmptySelection)

	rows := [][]float64{make([]float64, 500), make([]float64, 80)}
	_, err = CDAverageSpectrum(rows, 1000, DefaultWelchConfig(100))
	assert.ErrorIs(t, err, common.ErrWindowTooLarge)
}

func TestFindPeaks(t *testing.T) {
	axis := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	amps := []float64{0, 3, 1, 5, 5, 2, 0, 4, 1, 9}

	all := FindPeaks(axis, amps, 0, 10, MultiPeak, 0)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Index)
	assert.Equal(t, 7, all[1].Index)
	assert.Equal(t, 1, all[2].Index)

	top := FindPeaks(axis, amps, 0, 10, MultiPeak, 2)
	assert.Len(t, top, 2)

	ranged := FindPeaks(axis, amps, 5, 8, SinglePeak, 0)
	require.Len(t, ranged, 1)
	assert.Equal(t, 7.0, ranged[0].Frequency)

	assert.Empty(t, FindPeaks(axis, amps, 20, 30, MultiPeak, 0))
	assert.Empty(t, FindPeaks(axis[:2], amps[:2], 0, 10, MultiPeak, 0))
}

func TestAmplitudeSpectrogram(t *testing.T) {
	const fs = 1000.0
	x := sine(5000, fs, 50, 2, 0)
	cfg := DefaultWelchConfig(1000)

	sg, err := AmplitudeSpectrogram(x, fs, cfg)
	require.NoError(t, err)
	require.Len(t, sg.Amplitude, 9)
	assert.Len(t, sg.Positions, 9)
	assert.InDelta(t, 0.5, sg.Positions[0], 1e-12)
	assert.InDelta(t, 1.0, sg.Positions[1], 1e-12)

	for _, row := range sg.Amplitude {
		assert.InDelta(t, 2.0, row[50], 1e-6)
	}

	_, err = AmplitudeSpectrogram(x[:1000], fs, cfg)
	assert.ErrorIs(t, err, common.ErrWindowTooLarge)
}

func TestRealCepstrum(t *testing.T) {
	const fs = 100.0
	x := addNoise(make([]float64, 256), 1, 3)

	c, err := RealCepstrum(x, fs, windowing.WindowHann)
	require.NoError(t, err)
	assert.Len(t, c.Values, 128)
	assert.Len(t, c.Quefrencies, 128)
	assert.InDelta(t, 0.01, c.Quefrencies[1], 1e-12)
	for _, v := range c.Values {
		assert.False(t, math.IsNaN(v))
	}

	_, err = RealCepstrum(x[:2], fs, windowing.WindowHann)
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func TestCoherence(t *testing.T) {
	const fs = 1000.0
	x := addNoise(sine(4000, fs, 50, 1, 0), 0.5, 4)

	self, err := Coherence(x, x, fs, DefaultWelchConfig(500))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, self.Coherence[25], 1e-9)

	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = -3 * v
	}
	scaled, err := Coherence(x, y, fs, DefaultWelchConfig(500))
	require.NoError(t, err)
	for _, c := range scaled.Coherence[1:] {
		assert.InDelta(t, 1.0, c, 1e-6)
	}

	noise := addNoise(make([]float64, len(x)), 1, 5)
	unrelated, err := Coherence(x, noise, fs, DefaultWelchConfig(500))
	require.NoError(t, err)
	assert.Less(t, unrelated.Coherence[25], 0.5)

	_, err = Coherence(x, x[:10], fs, DefaultWelchConfig(500))
	assert.ErrorIs(t, err, common.ErrLengthMismatch)
}

func TestEndToEndBandpassThenWelch(t *testing.T) {
	const fs = 1000.0
	x := addNoise(sine(10000, fs, 50, 2.0, 0), 0.2, 7)

	filtered, err := filters.Bandpass(x, 10, 100, fs)
	require.NoError(t, err)
	require.Len(t, filtered, len(x))

	s, err := Welch(filtered, fs, DefaultWelchConfig(2000))
	require.NoError(t, err)

	peaks := FindPeaks(s.Frequencies, s.Amplitude, 10, 100, SinglePeak, 0)
	require.Len(t, peaks, 1)
	assert.InDelta(t, 50.0, peaks[0].Frequency, s.Resolution)
	assert.InDelta(t, 2.0, peaks[0].Amplitude, 0.1)
}

func TestSpectralShape(t *testing.T) {
	freqs := []float64{0, 10, 20, 30, 40}

	tone := SpectralShape(freqs, []float64{0, 0, 1, 0, 0}, DefaultRolloff)
	assert.InDelta(t, 20, tone.Centroid, 1e-12)
	assert.InDelta(t, 0, tone.Bandwidth, 1e-12)
	assert.InDelta(t, 20, tone.Rolloff, 1e-12)
	assert.InDelta(t, math.Sqrt(5), tone.Crest, 1e-12)
	assert.Less(t, tone.Flatness, 0.3)

	flat := SpectralShape(freqs, []float64{1, 1, 1, 1, 1}, DefaultRolloff)
	assert.InDelta(t, 20, flat.Centroid, 1e-12)
	assert.InDelta(t, 1, flat.Flatness, 1e-12)
	assert.InDelta(t, 1, flat.Crest, 1e-12)
	assert.InDelta(t, 40, flat.Rolloff, 1e-12)
	assert.Greater(t, flat.Bandwidth, tone.Bandwidth)

	assert.Equal(t, Shape{}, SpectralShape(freqs, make([]float64, 5), DefaultRolloff))
	assert.Equal(t, Shape{}, SpectralShape(nil, nil, DefaultRolloff))
}
