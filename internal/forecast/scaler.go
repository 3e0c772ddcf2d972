package forecast

import "math"

// standardScaler centers each column to zero mean and unit variance.
// Columns with zero variance keep scale 1 so transforms stay finite.
type standardScaler struct {
	mean  []float64
	scale []float64
}

func fitScaler(x [][]float64) *standardScaler {
	if len(x) == 0 {
		return &standardScaler{}
	}
	cols := len(x[0])
	s := &standardScaler{
		mean:  make([]float64, cols),
		scale: make([]float64, cols),
	}
	n := float64(len(x))
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := range x {
			sum += x[i][j]
		}
		s.mean[j] = sum / n
		ss := 0.0
		for i := range x {
			d := x[i][j] - s.mean[j]
			ss += d * d
		}
		s.scale[j] = math.Sqrt(ss / n)
		if s.scale[j] == 0 {
			s.scale[j] = 1
		}
	}
	return s
}

func (s *standardScaler) transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		row := make([]float64, len(x[i]))
		for j := range row {
			row[j] = (x[i][j] - s.mean[j]) / s.scale[j]
		}
		out[i] = row
	}
	return out
}

// columnScaler standardizes a single target column.
type columnScaler struct {
	mean  float64
	scale float64
}

func fitColumnScaler(y []float64) *columnScaler {
	s := &columnScaler{scale: 1}
	if len(y) == 0 {
		return s
	}
	n := float64(len(y))
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	s.mean = sum / n
	ss := 0.0
	for _, v := range y {
		d := v - s.mean
		ss += d * d
	}
	scale := math.Sqrt(ss / n)
	if scale != 0 {
		s.scale = scale
	}
	return s
}

func (s *columnScaler) transform(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = (v - s.mean) / s.scale
	}
	return out
}

func (s *columnScaler) inverse(v float64) float64 {
	return v*s.scale + s.mean
}
