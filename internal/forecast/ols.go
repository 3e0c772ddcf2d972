package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errSingular = errors.New("normal equations not positive definite")

// linearModel is an ordinary least squares fit with intercept, solved on the
// normal equations with a tiny ridge term for numerical stability (the
// feature set contains near-collinear columns such as the two bands).
type linearModel struct {
	coef []float64 // coef[0] is the intercept
}

func fitLinear(x [][]float64, y []float64) (*linearModel, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("empty or mismatched training data")
	}
	p := len(x[0]) + 1

	xtx := mat.NewSymDense(p, nil)
	xty := mat.NewVecDense(p, nil)
	row := make([]float64, p)
	for i := range x {
		row[0] = 1
		copy(row[1:], x[i])
		for a := 0; a < p; a++ {
			for b := a; b < p; b++ {
				xtx.SetSym(a, b, xtx.At(a, b)+row[a]*row[b])
			}
			xty.SetVec(a, xty.AtVec(a)+row[a]*y[i])
		}
	}

	lambda := 1e-8
	for attempt := 0; attempt < 4; attempt++ {
		reg := mat.NewSymDense(p, nil)
		reg.CopySym(xtx)
		for a := 0; a < p; a++ {
			reg.SetSym(a, a, reg.At(a, a)+lambda)
		}
		var chol mat.Cholesky
		if chol.Factorize(reg) {
			coef := mat.NewVecDense(p, nil)
			if err := chol.SolveVecTo(coef, xty); err == nil {
				return &linearModel{coef: coef.RawVector().Data}, nil
			}
		}
		lambda *= 100
	}
	return nil, errSingular
}

func (m *linearModel) predict(row []float64) float64 {
	out := m.coef[0]
	for i, v := range row {
		out += m.coef[i+1] * v
	}
	return out
}

// polyExpand produces the degree-2 feature expansion: all linear terms
// followed by every pairwise product including squares.
func polyExpand(row []float64) []float64 {
	n := len(row)
	out := make([]float64, 0, n+n*(n+1)/2)
	out = append(out, row...)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out = append(out, row[i]*row[j])
		}
	}
	return out
}

func polyExpandAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = polyExpand(x[i])
	}
	return out
}

// weightedTrendSlope fits a line to the last len(prices) points with an
// exponential recency ramp and returns its slope per sample.
func weightedTrendSlope(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return 0
	}
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		weights[i] = math.Exp(float64(i) / float64(n-1))
		sum += weights[i]
	}
	var sw, sx, sy, sxx, sxy float64
	for i := range weights {
		w := weights[i] / sum
		omega := w * w
		x := float64(i)
		sw += omega
		sx += omega * x
		sy += omega * prices[i]
		sxx += omega * x * x
		sxy += omega * x * prices[i]
	}
	denom := sw*sxx - sx*sx
	if denom == 0 {
		return 0
	}
	return (sw*sxy - sx*sy) / denom
}
