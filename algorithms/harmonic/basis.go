package harmonic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// harmonicBasis builds the real form of the exp(±j·2π·l·f0·t) model: one
// cos and one sin column per harmonic l = 1..numHarmonics. Harmonics above
// Nyquist are left out. Returns nil when no harmonic fits.
func harmonicBasis(n int, sampleRate, f0 float64, numHarmonics int) *mat.Dense {
	nyquist := sampleRate / 2
	usable := 0
	for l := 1; l <= numHarmonics; l++ {
		if float64(l)*f0 > nyquist {
			break
		}
		usable++
	}
	if usable == 0 || n == 0 {
		return nil
	}

	z := mat.NewDense(n, 2*usable, nil)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		for l := 1; l <= usable; l++ {
			phase := 2 * math.Pi * float64(l) * f0 * t
			z.Set(i, 2*(l-1), math.Cos(phase))
			z.Set(i, 2*(l-1)+1, math.Sin(phase))
		}
	}
	return z
}

// leastSquares solves min ||Zβ - x|| through an SVD with numpy's default
// rank cutoff, so columns that vanish at Nyquist do not blow up the solution.
func leastSquares(z *mat.Dense, x []float64) (*mat.VecDense, error) {
	rows, cols := z.Dims()
	if rows != len(x) {
		return nil, fmt.Errorf("design matrix has %d rows, signal has %d samples", rows, len(x))
	}

	var svd mat.SVD
	if ok := svd.Factorize(z, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization failed")
	}

	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(rows, cols))
	rank := svd.Rank(rcond)
	if rank == 0 {
		return mat.NewVecDense(cols, nil), nil
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, mat.NewVecDense(rows, x), rank)
	return &beta, nil
}

// fit returns Zβ for the least-squares β.
func fit(z *mat.Dense, x []float64) ([]float64, error) {
	beta, err := leastSquares(z, x)
	if err != nil {
		return nil, err
	}
	var fitted mat.VecDense
	fitted.MulVec(z, beta)
	return fitted.RawVector().Data, nil
}
