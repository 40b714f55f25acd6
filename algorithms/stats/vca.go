package stats

import (
	"github.com/RyanBlaney/sonido-paper/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultEdgeTrim is the fraction of CD positions dropped at each edge for
// the edge-trimmed decomposition.
const DefaultEdgeTrim = 0.1

// VarianceComponents is a two-way decomposition of a samples x positions
// matrix, in squared signal units.
type VarianceComponents struct {
	Total    float64 `json:"total"`
	MD       float64 `json:"md"`
	CD       float64 `json:"cd"`
	Residual float64 `json:"residual"`

	// Clipped reports that MD or CD came out negative and was set to 0, in
	// which case Total is the sum after clipping.
	Clipped bool `json:"clipped"`
}

// VarianceAnalysis reports the full-width and edge-trimmed decompositions
// together with the two-way residual matrix.
type VarianceAnalysis struct {
	Full      VarianceComponents `json:"full"`
	Trimmed   VarianceComponents `json:"trimmed"`
	TrimCount int                `json:"trim_count"` // positions dropped per edge
	Residual  [][]float64        `json:"residual"`
}

// toDense copies a rectangular row set into a matrix.
func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, common.ErrEmptySelection
	}
	k, p := len(rows), len(rows[0])
	m := mat.NewDense(k, p, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, common.LengthMismatch(p, len(row))
		}
		m.SetRow(i, row)
	}
	return m, nil
}

type marginals struct {
	rowMeans []float64
	colMeans []float64
	grand    float64
}

func means(m *mat.Dense) marginals {
	k, p := m.Dims()
	mg := marginals{rowMeans: make([]float64, k), colMeans: make([]float64, p)}
	for i := 0; i < k; i++ {
		mg.rowMeans[i] = floats.Sum(m.RawRowView(i)) / float64(p)
	}
	for j := 0; j < p; j++ {
		mg.colMeans[j] = mat.Sum(m.ColView(j)) / float64(k)
	}
	mg.grand = mat.Sum(m) / float64(k*p)
	return mg
}

func meanSquare(ss float64, df int) float64 {
	if df <= 0 {
		return 0
	}
	return ss / float64(df)
}

func decompose(m *mat.Dense) VarianceComponents {
	k, p := m.Dims()
	mg := means(m)

	var ssMD, ssCD, ssTotal float64
	for _, rm := range mg.rowMeans {
		ssMD += (rm - mg.grand) * (rm - mg.grand)
	}
	ssMD *= float64(p)
	for _, cm := range mg.colMeans {
		ssCD += (cm - mg.grand) * (cm - mg.grand)
	}
	ssCD *= float64(k)
	for i := 0; i < k; i++ {
		for _, v := range m.RawRowView(i) {
			ssTotal += (v - mg.grand) * (v - mg.grand)
		}
	}
	ssResidual := max(ssTotal-ssMD-ssCD, 0)

	msMD := meanSquare(ssMD, k-1)
	msCD := meanSquare(ssCD, p-1)
	msResidual := meanSquare(ssResidual, (k-1)*(p-1))

	vc := VarianceComponents{
		MD:       (msMD - msResidual) / float64(p),
		CD:       (msCD - msResidual) / float64(k),
		Residual: msResidual,
	}
	if vc.MD < 0 {
		vc.MD, vc.Clipped = 0, true
	}
	if vc.CD < 0 {
		vc.CD, vc.Clipped = 0, true
	}
	vc.Total = vc.MD + vc.CD + vc.Residual
	return vc
}

// DecomposeVariance runs the balanced two-way ANOVA estimator on a
// samples x positions matrix.
func DecomposeVariance(rows [][]float64) (VarianceComponents, error) {
	m, err := toDense(rows)
	if err != nil {
		return VarianceComponents{}, err
	}
	return decompose(m), nil
}

// AnalyzeVariance decomposes the full matrix and the matrix with
// edgeTrim of the positions removed from each side. The trimmed result
// equals the full one when the trim rounds to zero positions or would
// leave nothing.
func AnalyzeVariance(rows [][]float64, edgeTrim float64) (*VarianceAnalysis, error) {
	if edgeTrim < 0 || edgeTrim >= 0.5 {
		return nil, common.InvalidParameter("edge trim must be in [0, 0.5): %f", edgeTrim)
	}
	m, err := toDense(rows)
	if err != nil {
		return nil, err
	}

	k, p := m.Dims()
	analysis := &VarianceAnalysis{
		Full:     decompose(m),
		Residual: residual(m),
	}

	cut := int(float64(p) * edgeTrim)
	if cut == 0 || p-2*cut < 1 {
		analysis.Trimmed = analysis.Full
		return analysis, nil
	}
	analysis.TrimCount = cut
	analysis.Trimmed = decompose(m.Slice(0, k, cut, p-cut).(*mat.Dense))
	return analysis, nil
}

// ResidualMatrix returns M - rowmean - colmean + grandmean.
func ResidualMatrix(rows [][]float64) ([][]float64, error) {
	m, err := toDense(rows)
	if err != nil {
		return nil, err
	}
	return residual(m), nil
}

func residual(m *mat.Dense) [][]float64 {
	k, p := m.Dims()
	mg := means(m)
	out := make([][]float64, k)
	for i := 0; i < k; i++ {
		out[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			out[i][j] = m.At(i, j) - mg.rowMeans[i] - mg.colMeans[j] + mg.grand
		}
	}
	return out
}
