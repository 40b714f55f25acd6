package measurement

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/google/uuid"
)

// ErrUnknownChannel is returned when a channel name is not in the measurement.
var ErrUnknownChannel = errors.New("unknown channel")

// Measurement is one loaded MD trace set, optionally segmented into CD
// samples. Values are treated as immutable: operations that change the
// selection or segmentation return a new Measurement sharing the raw
// channel slices.
type Measurement struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Channels   map[string][]float64 `json:"-"`
	Distances  []float64            `json:"-"` // m, one per MD sample
	SampleStep float64              `json:"sample_step"`
	Units      map[string]string    `json:"units,omitempty"`

	// Set by ApplySegmentation.
	Segments      map[string][][]float64 `json:"-"`
	CDDistances   []float64              `json:"-"`
	SegmentBounds []DataSegment          `json:"segment_bounds,omitempty"`
	Peaks         *PeakSet               `json:"peaks,omitempty"`
	TapeWidth     float64                `json:"tape_width,omitempty"`
}

// New validates the shared distance axis and wraps the channels. Every
// channel must have one value per distance and distances must increase.
func New(channels map[string][]float64, distances []float64, sampleStep float64, units map[string]string) (*Measurement, error) {
	if sampleStep <= 0 {
		return nil, common.InvalidParameter("sample step must be > 0: %f", sampleStep)
	}
	if len(channels) == 0 {
		return nil, common.InvalidParameter("measurement has no channels")
	}
	for i := 1; i < len(distances); i++ {
		if distances[i] <= distances[i-1] {
			return nil, common.InvalidParameter("distances must increase, index %d: %f <= %f",
				i, distances[i], distances[i-1])
		}
	}
	for name, data := range channels {
		if len(data) != len(distances) {
			return nil, fmt.Errorf("channel %q: %w", name, common.LengthMismatch(len(data), len(distances)))
		}
	}

	if units == nil {
		units = make(map[string]string)
	}
	return &Measurement{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Channels:   channels,
		Distances:  distances,
		SampleStep: sampleStep,
		Units:      units,
	}, nil
}

// NewUniform builds the distance axis as index*sampleStep.
func NewUniform(channels map[string][]float64, sampleStep float64, units map[string]string) (*Measurement, error) {
	n := 0
	for _, data := range channels {
		n = len(data)
		break
	}
	return New(channels, common.Arange(n, sampleStep), sampleStep, units)
}

// SampleRate is samples per meter.
func (m *Measurement) SampleRate() float64 { return 1 / m.SampleStep }

// Len is the number of MD samples.
func (m *Measurement) Len() int { return len(m.Distances) }

// ChannelNames returns the channel names in sorted order.
func (m *Measurement) ChannelNames() []string {
	names := make([]string, 0, len(m.Channels))
	for name := range m.Channels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Channel returns the MD trace of one channel.
func (m *Measurement) Channel(name string) ([]float64, error) {
	data, ok := m.Channels[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownChannel)
	}
	return data, nil
}

// Unit returns the display unit of a channel, or "" when unknown.
func (m *Measurement) Unit(name string) string { return m.Units[name] }

// IsSegmented reports whether CD samples are available.
func (m *Measurement) IsSegmented() bool { return m.Segments != nil }

// NumSamples is the number of CD sample rows.
func (m *Measurement) NumSamples() int {
	for _, rows := range m.Segments {
		return len(rows)
	}
	return 0
}

// Samples returns the CD sample rows of one channel. No rows is reported
// as ErrEmptySelection so CD analyses never run on an empty matrix.
func (m *Measurement) Samples(name string) ([][]float64, error) {
	if _, ok := m.Channels[name]; !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownChannel)
	}
	rows := m.Segments[name]
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("channel %q: %w", name, common.ErrEmptySelection)
	}
	return rows, nil
}

func (m *Measurement) clone() *Measurement {
	c := *m
	return &c
}

// Range returns the MD sub-trace with distances in [low, high). CD data is
// carried over unchanged.
func (m *Measurement) Range(low, high float64) (*Measurement, error) {
	if high <= low {
		return nil, common.InvalidParameter("range high %f must exceed low %f", high, low)
	}
	start := common.SearchSorted(m.Distances, low, false)
	end := common.SearchSorted(m.Distances, high, false)
	if end <= start {
		return nil, fmt.Errorf("range [%f, %f): %w", low, high, common.ErrEmptySelection)
	}

	c := m.clone()
	c.Distances = m.Distances[start:end]
	c.Channels = make(map[string][]float64, len(m.Channels))
	for name, data := range m.Channels {
		c.Channels[name] = data[start:end]
	}
	return c, nil
}

// CDRange keeps the CD positions with cd distance in [low, high).
func (m *Measurement) CDRange(low, high float64) (*Measurement, error) {
	if !m.IsSegmented() {
		return nil, fmt.Errorf("measurement is not segmented: %w", common.ErrEmptySelection)
	}
	if high <= low {
		return nil, common.InvalidParameter("range high %f must exceed low %f", high, low)
	}
	start := common.SearchSorted(m.CDDistances, low, false)
	end := common.SearchSorted(m.CDDistances, high, false)
	if end <= start {
		return nil, fmt.Errorf("cd range [%f, %f): %w", low, high, common.ErrEmptySelection)
	}

	c := m.clone()
	c.CDDistances = m.CDDistances[start:end]
	c.Segments = make(map[string][][]float64, len(m.Segments))
	for name, rows := range m.Segments {
		cut := make([][]float64, len(rows))
		for i, row := range rows {
			cut[i] = row[start:end]
		}
		c.Segments[name] = cut
	}
	return c, nil
}

// SelectSamples keeps only the listed CD sample rows, in the given order.
func (m *Measurement) SelectSamples(indices []int) (*Measurement, error) {
	if len(indices) == 0 {
		return nil, common.ErrEmptySelection
	}
	n := m.NumSamples()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, common.InvalidParameter("sample index %d out of range [0, %d)", idx, n)
		}
	}

	c := m.clone()
	c.Segments = make(map[string][][]float64, len(m.Segments))
	for name, rows := range m.Segments {
		picked := make([][]float64, len(indices))
		for i, idx := range indices {
			picked[i] = rows[idx]
		}
		c.Segments[name] = picked
	}
	if len(m.SegmentBounds) == n {
		c.SegmentBounds = make([]DataSegment, len(indices))
		for i, idx := range indices {
			c.SegmentBounds[i] = m.SegmentBounds[idx]
		}
	}
	return c, nil
}

// ApplySegmentation splits every channel at the given peaks and returns a
// new Measurement holding the CD segments. The receiver is not modified.
func (m *Measurement) ApplySegmentation(peaks PeakSet, tapeWidth float64) (*Measurement, error) {
	seg, err := SplitToSegments(m.Channels, m.Distances, peaks.Locations, tapeWidth, m.SampleStep)
	if err != nil {
		return nil, err
	}

	c := m.clone()
	c.Segments = seg.Segments
	c.CDDistances = seg.CDDistances
	c.SegmentBounds = seg.Bounds
	c.TapeWidth = tapeWidth
	p := peaks
	p.Locations = slices.Clone(peaks.Locations)
	c.Peaks = &p
	return c, nil
}

// MeanSampleLength is the mean distance between consecutive peaks, 0 with
// fewer than two peaks.
func (m *Measurement) MeanSampleLength() float64 {
	if m.Peaks == nil || len(m.Peaks.Locations) < 2 {
		return 0
	}
	locs := m.Peaks.Locations
	return (locs[len(locs)-1] - locs[0]) / float64(len(locs)-1)
}
