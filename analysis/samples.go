package analysis

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"github.com/RyanBlaney/sonido-paper/analysis/config"
	"github.com/RyanBlaney/sonido-paper/logging"
	"github.com/RyanBlaney/sonido-paper/measurement"
)

// DetectSamples finds the tape marks on the configured peak channel and
// returns a new measurement split into CD samples. The input measurement
// is left untouched. Fewer than two accepted marks give a measurement with
// zero samples, not an error.
func (a *Analyzer) DetectSamples(m *measurement.Measurement, sc config.SegmentationConfig) (*measurement.Measurement, error) {
	if m == nil {
		return nil, common.InvalidParameter("measurement is nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	logger := a.logger.WithFields(logging.Fields{
		"function":     "DetectSamples",
		"peak_channel": sc.PeakChannel,
		"threshold":    sc.Threshold,
	})

	signal, err := m.Channel(sc.PeakChannel)
	if err != nil {
		return nil, fail(logger, err, "Peak channel missing")
	}

	locations, err := measurement.DetectPeaks(signal, m.Distances, sc.Detection())
	if err != nil {
		return nil, fail(logger, err, "Peak detection failed")
	}

	peaks := measurement.PeakSet{
		Locations: locations,
		Threshold: sc.Threshold,
		Channel:   sc.PeakChannel,
	}
	segmented, err := m.ApplySegmentation(peaks, sc.TapeWidth)
	if err != nil {
		return nil, fail(logger, err, "Segmentation failed")
	}

	if peaks.NumSamples() == 0 {
		logger.Warn("No usable samples detected", logging.Fields{"peaks": len(locations)})
	} else {
		logger.Info("Samples detected", logging.Fields{
			"samples":    peaks.NumSamples(),
			"cd_length":  len(segmented.CDDistances),
			"mean_width": segmented.MeanSampleLength(),
		})
	}
	return segmented, nil
}
