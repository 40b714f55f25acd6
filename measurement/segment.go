package measurement

import (
	"fmt"
	"slices"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// DataSegment is the half-open distance interval [Start, End) of one CD
// sample. StartIndex and EndIndex are the matching half-open range into the
// measurement's distance axis, set by SplitToSegments.
type DataSegment struct {
	Start      float64 `json:"start"` // m
	End        float64 `json:"end"`   // m
	SampleStep float64 `json:"sample_step"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
}

// Length in meters.
func (s DataSegment) Length() float64 { return s.End - s.Start }

// PeakSet is the result of sample-boundary detection.
type PeakSet struct {
	Locations []float64 `json:"locations"` // m, increasing
	Threshold float64   `json:"threshold"`
	Channel   string    `json:"channel"`
}

// NumSamples is the number of usable samples between the peaks.
func (p PeakSet) NumSamples() int { return max(len(p.Locations)-1, 0) }

// Bounds returns one segment per consecutive peak pair with tapeWidth
// removed from both ends.
func (p PeakSet) Bounds(tapeWidth, sampleStep float64) []DataSegment {
	bounds := make([]DataSegment, p.NumSamples())
	for i := range bounds {
		bounds[i] = DataSegment{
			Start:      p.Locations[i] + tapeWidth,
			End:        p.Locations[i+1] - tapeWidth,
			SampleStep: sampleStep,
		}
	}
	return bounds
}

// Segmentation is the CD view of a measurement: per channel, one row per
// sample, all channels with the same shape.
type Segmentation struct {
	Segments    map[string][][]float64
	CDDistances []float64
	Bounds      []DataSegment
}

// Columns is the shared CD length.
func (s *Segmentation) Columns() int { return len(s.CDDistances) }

// SplitToSegments cuts every channel between consecutive peaks, minus the
// tape width at both ends. Slices of one channel differ by a sample or so
// from rounding, so each is center-trimmed to the shortest of its channel
// and then to the shortest over all channels. Fewer than two peaks give
// zero rows per channel.
func SplitToSegments(channels map[string][]float64, distances, peakLocations []float64, tapeWidth, sampleStep float64) (*Segmentation, error) {
	if sampleStep <= 0 {
		return nil, common.InvalidParameter("sample step must be > 0: %f", sampleStep)
	}
	if tapeWidth < 0 {
		return nil, common.InvalidParameter("tape width must be >= 0: %f", tapeWidth)
	}
	for name, data := range channels {
		if len(data) != len(distances) {
			return nil, fmt.Errorf("channel %q: %w", name, common.LengthMismatch(len(data), len(distances)))
		}
	}
	if !slices.IsSorted(peakLocations) {
		return nil, common.InvalidParameter("peak locations must be increasing")
	}

	peaks := PeakSet{Locations: peakLocations}
	bounds := peaks.Bounds(tapeWidth, sampleStep)

	seg := &Segmentation{
		Segments:    make(map[string][][]float64, len(channels)),
		CDDistances: []float64{},
		Bounds:      bounds,
	}
	if len(bounds) == 0 {
		for name := range channels {
			seg.Segments[name] = [][]float64{}
		}
		return seg, nil
	}

	for i := range bounds {
		start := common.SearchSorted(distances, bounds[i].Start, false)
		end := common.SearchSorted(distances, bounds[i].End, true)
		bounds[i].StartIndex, bounds[i].EndIndex = start, max(end, start)
	}

	globalMin := -1
	for name, data := range channels {
		rows := make([][]float64, len(bounds))
		channelMin := -1
		for i, b := range bounds {
			rows[i] = data[b.StartIndex:b.EndIndex]
			if channelMin < 0 || len(rows[i]) < channelMin {
				channelMin = len(rows[i])
			}
		}
		for i := range rows {
			rows[i] = common.CenterTrim(rows[i], channelMin)
		}
		seg.Segments[name] = rows
		if globalMin < 0 || channelMin < globalMin {
			globalMin = channelMin
		}
	}
	globalMin = max(globalMin, 0)

	for name, rows := range seg.Segments {
		for i, row := range rows {
			rows[i] = slices.Clone(common.CenterTrim(row, globalMin))
		}
		seg.Segments[name] = rows
	}
	seg.CDDistances = common.Arange(globalMin, sampleStep)

	return seg, nil
}
