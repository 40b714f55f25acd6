package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-paper/algorithms/common"
)

// butterworthQ returns the quality factor of the k-th conjugate pole pair of
// an order-n Butterworth prototype.
func butterworthQ(order, k int) float64 {
	theta := math.Pi * float64(2*k+order+1) / float64(2*order)
	return -1.0 / (2.0 * math.Cos(theta))
}

func validateDesign(order int, cutoff, sampleRate float64) error {
	if order <= 0 {
		return common.InvalidParameter("filter order must be > 0: %d", order)
	}
	if sampleRate <= 0 {
		return common.InvalidParameter("sample rate must be > 0: %f", sampleRate)
	}
	if cutoff <= 0 || cutoff >= sampleRate/2 {
		return common.InvalidParameter("cutoff %f outside (0, %f)", cutoff, sampleRate/2)
	}
	return nil
}

// ButterworthLowpass designs an order-n lowpass cascade by the bilinear
// transform with prewarping. Odd orders end with a first-order section.
func ButterworthLowpass(order int, cutoff, sampleRate float64) ([]Section, error) {
	if err := validateDesign(order, cutoff, sampleRate); err != nil {
		return nil, err
	}

	k := math.Tan(math.Pi * cutoff / sampleRate)
	k2 := k * k
	sections := make([]Section, 0, (order+1)/2)

	for i := 0; i < order/2; i++ {
		q := butterworthQ(order, i)
		norm := 1.0 / (1.0 + k/q + k2)
		b0 := k2 * norm
		sections = append(sections, Section{
			B0: b0,
			B1: 2 * b0,
			B2: b0,
			A1: 2 * (k2 - 1) * norm,
			A2: (1 - k/q + k2) * norm,
		})
	}

	if order%2 != 0 {
		b0 := k / (1 + k)
		sections = append(sections, Section{B0: b0, B1: b0, A1: (k - 1) / (k + 1)})
	}

	return sections, nil
}

// ButterworthHighpass designs an order-n highpass cascade.
func ButterworthHighpass(order int, cutoff, sampleRate float64) ([]Section, error) {
	if err := validateDesign(order, cutoff, sampleRate); err != nil {
		return nil, err
	}

	k := math.Tan(math.Pi * cutoff / sampleRate)
	k2 := k * k
	sections := make([]Section, 0, (order+1)/2)

	for i := 0; i < order/2; i++ {
		q := butterworthQ(order, i)
		norm := 1.0 / (1.0 + k/q + k2)
		sections = append(sections, Section{
			B0: norm,
			B1: -2 * norm,
			B2: norm,
			A1: 2 * (k2 - 1) * norm,
			A2: (1 - k/q + k2) * norm,
		})
	}

	if order%2 != 0 {
		b0 := 1 / (1 + k)
		sections = append(sections, Section{B0: b0, B1: -b0, A1: (k - 1) / (k + 1)})
	}

	return sections, nil
}
