package spectral

import (
	"sort"
)

// PeakMode selects how many peaks FindPeaks reports.
type PeakMode int

const (
	// SinglePeak reports only the highest peak in range.
	SinglePeak PeakMode = iota
	// MultiPeak reports the K highest peaks in range.
	MultiPeak
)

// Peak is a local maximum of a spectrum or cepstrum.
type Peak struct {
	Frequency float64 `json:"frequency"` // 1/m, or m for quefrency peaks
	Amplitude float64 `json:"amplitude"`
	Index     int     `json:"index"`
}

// FindPeaks returns local maxima of amplitudes whose axis value lies in
// [minFreq, maxFreq], ordered by descending amplitude. SinglePeak returns at
// most one peak, MultiPeak at most k (all when k <= 0). A plateau counts once,
// at its first sample.
func FindPeaks(axis, amplitudes []float64, minFreq, maxFreq float64, mode PeakMode, k int) []Peak {
	n := min(len(axis), len(amplitudes))
	if n < 3 {
		return []Peak{}
	}

	var peaks []Peak
	for i := 1; i < n-1; i++ {
		if axis[i] < minFreq || axis[i] > maxFreq {
			continue
		}
		if amplitudes[i] <= amplitudes[i-1] {
			continue
		}

		// walk across a flat top before deciding
		j := i
		for j+1 < n-1 && amplitudes[j+1] == amplitudes[i] {
			j++
		}
		if amplitudes[j+1] < amplitudes[i] {
			peaks = append(peaks, Peak{Frequency: axis[i], Amplitude: amplitudes[i], Index: i})
		}
	}

	sort.SliceStable(peaks, func(a, b int) bool {
		return peaks[a].Amplitude > peaks[b].Amplitude
	})

	limit := len(peaks)
	switch mode {
	case SinglePeak:
		limit = min(limit, 1)
	case MultiPeak:
		if k > 0 {
			limit = min(limit, k)
		}
	}
	if peaks == nil {
		return []Peak{}
	}
	return peaks[:limit]
}
