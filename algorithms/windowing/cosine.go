package windowing

import "math"

// cosineSum evaluates Σ (-1)^k a_k cos(2πkn/(m-1)) for n in [0, m).
func cosineSum(a []float64) func(m int) []float64 {
	return func(m int) []float64 {
		w := make([]float64, m)
		den := float64(m - 1)
		for n := 0; n < m; n++ {
			sign := 1.0
			for k, ak := range a {
				w[n] += sign * ak * math.Cos(2*math.Pi*float64(k)*float64(n)/den)
				sign = -sign
			}
		}
		return w
	}
}
