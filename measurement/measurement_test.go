package measurement

import (
	"testing"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 0.01

// tapeSignal is 0 everywhere except 1 over each [start, end) meter span.
func tapeSignal(n int, spans ...[2]float64) ([]float64, []float64) {
	distances := common.Arange(n, step)
	signal := make([]float64, n)
	for i, d := range distances {
		for _, s := range spans {
			if d >= s[0]-1e-9 && d < s[1]-1e-9 {
				signal[i] = 1
			}
		}
	}
	return signal, distances
}

func TestDetectPeaksBasic(t *testing.T) {
	signal, distances := tapeSignal(1000, [2]float64{1.0, 1.1}, [2]float64{4.0, 4.1}, [2]float64{7.0, 7.1})
	params := DetectionParams{Threshold: 0.5, MinTapeWidth: 0.05, MinSampleLength: 2, MaxSampleLength: 4}

	peaks, err := DetectPeaks(signal, distances, params)
	require.NoError(t, err)
	require.Len(t, peaks, 3)
	assert.InDelta(t, 1.05, peaks[0], 1e-9)
	assert.InDelta(t, 4.05, peaks[1], 1e-9)
	assert.InDelta(t, 7.05, peaks[2], 1e-9)
}

func TestDetectPeaksRejectsNarrowCrossing(t *testing.T) {
	signal, distances := tapeSignal(1000,
		[2]float64{1.0, 1.1},
		[2]float64{2.5, 2.52}, // too narrow
		[2]float64{4.0, 4.1})
	params := DetectionParams{Threshold: 0.5, MinTapeWidth: 0.05, MinSampleLength: 0.5, MaxSampleLength: 5}

	peaks, err := DetectPeaks(signal, distances, params)
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.InDelta(t, 1.05, peaks[0], 1e-9)
	assert.InDelta(t, 4.05, peaks[1], 1e-9)
}

func TestDetectPeaksGapUsesLastAccepted(t *testing.T) {
	// the crossing at 1.5 is too close to the first; the one at 3.5 is
	// only 1.9 after the rejected one but 2.4 after the accepted one
	signal, distances := tapeSignal(1000,
		[2]float64{1.0, 1.1},
		[2]float64{1.5, 1.6},
		[2]float64{3.5, 3.6})
	params := DetectionParams{Threshold: 0.5, MinTapeWidth: 0.05, MinSampleLength: 2.2, MaxSampleLength: 3}

	peaks, err := DetectPeaks(signal, distances, params)
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.InDelta(t, 1.05, peaks[0], 1e-9)
	assert.InDelta(t, 3.55, peaks[1], 1e-9)
}

func TestDetectPeaksClosesAtFinalIndex(t *testing.T) {
	signal, distances := tapeSignal(300, [2]float64{0.5, 0.6}, [2]float64{2.5, 3.5})
	params := DetectionParams{Threshold: 0.5, MinTapeWidth: 0.05, MinSampleLength: 1, MaxSampleLength: 3}

	peaks, err := DetectPeaks(signal, distances, params)
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	// run [2.5, 2.99] closed at the last sample
	assert.InDelta(t, 2.5+(2.99-2.5)/2, peaks[1], 1e-9)
}

func TestDetectPeaksNoneAccepted(t *testing.T) {
	signal, distances := tapeSignal(200)
	peaks, err := DetectPeaks(signal, distances, DetectionParams{Threshold: 0.5, MaxSampleLength: 1})
	require.NoError(t, err)
	assert.NotNil(t, peaks)
	assert.Empty(t, peaks)

	_, err = DetectPeaks(signal, distances[:10], DetectionParams{})
	assert.ErrorIs(t, err, common.ErrLengthMismatch)

	_, err = DetectPeaks(signal, distances, DetectionParams{MinSampleLength: 2, MaxSampleLength: 1})
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func ramp(n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + float64(i)
	}
	return out
}

func TestSplitToSegmentsInvariants(t *testing.T) {
	distances := common.Arange(1000, step)
	channels := map[string][]float64{
		"basis_weight": ramp(1000, 0),
		"caliper":      ramp(1000, 5000),
	}
	peaks := []float64{0.503, 2.498, 4.5, 6.51}

	seg, err := SplitToSegments(channels, distances, peaks, 0.1, step)
	require.NoError(t, err)

	cols := seg.Columns()
	require.Greater(t, cols, 0)
	for name, rows := range seg.Segments {
		require.Len(t, rows, len(peaks)-1, name)
		for _, row := range rows {
			assert.Len(t, row, cols, name)
		}
	}
	assert.Len(t, seg.CDDistances, cols)
	assert.InDelta(t, step, seg.CDDistances[1], 1e-12)
	require.Len(t, seg.Bounds, 3)
	assert.InDelta(t, 0.603, seg.Bounds[0].Start, 1e-12)
	assert.InDelta(t, 2.398, seg.Bounds[0].End, 1e-12)

	// rows come from inside their bounds
	for i, row := range seg.Segments["basis_weight"] {
		assert.GreaterOrEqual(t, row[0], seg.Bounds[i].Start/step-1)
		assert.LessOrEqual(t, row[len(row)-1], seg.Bounds[i].End/step+1)
	}
}

func TestSplitToSegmentsBoundIndices(t *testing.T) {
	const fine = 0.001
	distances := common.Arange(3000, fine)
	data := ramp(3000, 0)

	// 0.57/0.001 is 569.999..., the first sample at or past 0.57 m is 570
	seg, err := SplitToSegments(map[string][]float64{"a": data}, distances, []float64{0.52, 2.52}, 0.05, fine)
	require.NoError(t, err)
	require.Len(t, seg.Bounds, 1)

	b := seg.Bounds[0]
	assert.Equal(t, 570, b.StartIndex)
	assert.Equal(t, 2471, b.EndIndex)
	assert.GreaterOrEqual(t, distances[b.StartIndex], b.Start)
	assert.Less(t, distances[b.StartIndex-1], b.Start)
	assert.LessOrEqual(t, distances[b.EndIndex-1], b.End)

	row := seg.Segments["a"][0]
	assert.Len(t, row, b.EndIndex-b.StartIndex)
	assert.Equal(t, 570.0, row[0])
}

func TestSplitToSegmentsFewPeaks(t *testing.T) {
	distances := common.Arange(100, step)
	channels := map[string][]float64{"a": ramp(100, 0)}

	for _, peaks := range [][]float64{nil, {0.5}} {
		seg, err := SplitToSegments(channels, distances, peaks, 0.01, step)
		require.NoError(t, err)
		assert.Empty(t, seg.Segments["a"])
		assert.Empty(t, seg.CDDistances)
	}
}

func TestSplitToSegmentsDoesNotAlias(t *testing.T) {
	distances := common.Arange(100, step)
	data := ramp(100, 0)
	seg, err := SplitToSegments(map[string][]float64{"a": data}, distances, []float64{0.1, 0.5}, 0, step)
	require.NoError(t, err)

	seg.Segments["a"][0][0] = -1
	assert.NotContains(t, data, -1.0)
}

func newTestMeasurement(t *testing.T) *Measurement {
	t.Helper()
	m, err := NewUniform(map[string][]float64{
		"basis_weight": ramp(1000, 0),
		"caliper":      ramp(1000, 100),
	}, step, map[string]string{"basis_weight": "g/m²"})
	require.NoError(t, err)
	return m
}

func TestNewValidates(t *testing.T) {
	_, err := New(map[string][]float64{"a": {1, 2}}, []float64{0, 0.1, 0.2}, 0.1, nil)
	assert.ErrorIs(t, err, common.ErrLengthMismatch)

	_, err = New(map[string][]float64{"a": {1, 2}}, []float64{0.1, 0.1}, 0.1, nil)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	_, err = New(map[string][]float64{"a": {1}}, []float64{0}, 0, nil)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	m := newTestMeasurement(t)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, []string{"basis_weight", "caliper"}, m.ChannelNames())
	assert.InDelta(t, 100, m.SampleRate(), 1e-9)
	assert.Equal(t, "g/m²", m.Unit("basis_weight"))

	_, err = m.Channel("nope")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestRange(t *testing.T) {
	m := newTestMeasurement(t)

	r, err := m.Range(0.995, 1.995)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Len())
	bw, err := r.Channel("basis_weight")
	require.NoError(t, err)
	assert.Equal(t, 100.0, bw[0])
	assert.Equal(t, 1000, m.Len())

	_, err = m.Range(20, 30)
	assert.ErrorIs(t, err, common.ErrEmptySelection)
}

func TestApplySegmentationAndSelect(t *testing.T) {
	m := newTestMeasurement(t)
	assert.False(t, m.IsSegmented())

	_, err := m.Samples("basis_weight")
	assert.ErrorIs(t, err, common.ErrEmptySelection)

	seg, err := m.ApplySegmentation(PeakSet{Locations: []float64{0.5, 2.5, 4.5, 6.5}, Channel: "caliper"}, 0.1)
	require.NoError(t, err)
	assert.False(t, m.IsSegmented())
	assert.Equal(t, 3, seg.NumSamples())
	assert.InDelta(t, 2.0, seg.MeanSampleLength(), 1e-12)

	rows, err := seg.Samples("basis_weight")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	picked, err := seg.SelectSamples([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, picked.NumSamples())
	assert.Equal(t, seg.Segments["caliper"][2], picked.Segments["caliper"][0])
	assert.Equal(t, seg.SegmentBounds[0], picked.SegmentBounds[1])

	_, err = seg.SelectSamples(nil)
	assert.ErrorIs(t, err, common.ErrEmptySelection)
	_, err = seg.SelectSamples([]int{3})
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	empty, err := m.ApplySegmentation(PeakSet{Locations: []float64{0.5}}, 0.1)
	require.NoError(t, err)
	_, err = empty.Samples("basis_weight")
	assert.ErrorIs(t, err, common.ErrEmptySelection)
}

func TestCDRangeAndProfile(t *testing.T) {
	m := newTestMeasurement(t)
	seg, err := m.ApplySegmentation(PeakSet{Locations: []float64{0.5, 2.5, 4.5}}, 0.1)
	require.NoError(t, err)

	p, err := seg.CDProfile("basis_weight")
	require.NoError(t, err)
	cols := len(seg.CDDistances)
	require.Len(t, p.Mean, cols)
	assert.Equal(t, 2, p.Samples)
	// the rows are the same ramp 200 samples apart
	assert.InDelta(t, 100, p.Max[0]-p.Mean[0], 1)
	assert.InDelta(t, 200, p.Max[0]-p.Min[0], 2)
	assert.Greater(t, p.StdDev[0], 0.0)

	narrow, err := seg.CDRange(0.495, 0.995)
	require.NoError(t, err)
	assert.Len(t, narrow.CDDistances, 50)
	for _, row := range narrow.Segments["caliper"] {
		assert.Len(t, row, 50)
	}

	_, err = m.CDRange(0, 1)
	assert.ErrorIs(t, err, common.ErrEmptySelection)

	one, err := seg.SelectSamples([]int{1})
	require.NoError(t, err)
	p1, err := one.CDProfile("caliper")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p1.StdDev[0])
	assert.Equal(t, p1.Min, p1.Mean)
}
