package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler_CentersAndScales(t *testing.T) {
	x := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	}
	s := fitScaler(x)
	out := s.transform(x)
	require.Len(t, out, len(x))

	for j := 0; j < 2; j++ {
		var sum, sq float64
		for i := range out {
			sum += out[i][j]
			sq += out[i][j] * out[i][j]
		}
		n := float64(len(out))
		mean := sum / n
		std := math.Sqrt(sq/n - mean*mean)
		assert.InDelta(t, 0.0, mean, 1e-12, "column %d mean", j)
		assert.InDelta(t, 1.0, std, 1e-12, "column %d std", j)
	}
}

func TestStandardScaler_ConstantColumnStaysFinite(t *testing.T) {
	x := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}
	s := fitScaler(x)
	assert.Equal(t, 1.0, s.scale[0])

	out := s.transform(x)
	for i := range out {
		assert.Equal(t, 0.0, out[i][0])
		assert.False(t, math.IsNaN(out[i][1]))
	}
}

func TestColumnScaler_InverseRoundTrip(t *testing.T) {
	y := []float64{100, 101, 103, 99, 102}
	s := fitColumnScaler(y)
	scaled := s.transform(y)
	for i, v := range scaled {
		assert.InDelta(t, y[i], s.inverse(v), 1e-9)
	}
}

func TestColumnScaler_ConstantTarget(t *testing.T) {
	y := []float64{7, 7, 7}
	s := fitColumnScaler(y)
	assert.Equal(t, 1.0, s.scale)
	scaled := s.transform(y)
	for _, v := range scaled {
		assert.Equal(t, 0.0, v)
	}
	assert.InDelta(t, 7.0, s.inverse(0), 1e-12)
}
