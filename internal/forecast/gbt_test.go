package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGBT_ConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{5, 5, 5, 5}

	g := newGBTRegressor()
	require.NoError(t, g.fit(x, y))

	for _, row := range x {
		assert.InDelta(t, 5.0, g.predict(row), 1e-12)
	}
}

func TestGBT_FitsStepFunction(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		x = append(x, []float64{float64(i)})
		if i < 20 {
			y = append(y, 1)
		} else {
			y = append(y, 3)
		}
	}

	g := newGBTRegressor()
	require.NoError(t, g.fit(x, y))

	assert.InDelta(t, 1.0, g.predict([]float64{5}), 0.1)
	assert.InDelta(t, 3.0, g.predict([]float64{35}), 0.1)
}

func TestGBT_TracksLinearTrend(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 60; i++ {
		x = append(x, []float64{float64(i), float64(i % 7)})
		y = append(y, 2*float64(i)+10)
	}

	g := newGBTRegressor()
	require.NoError(t, g.fit(x, y))

	// Predictions inside the training range should sit close to the line.
	assert.InDelta(t, 70.0, g.predict([]float64{30, 2}), 5.0)
	assert.InDelta(t, 30.0, g.predict([]float64{10, 3}), 5.0)
}

func TestGBT_Deterministic(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		x = append(x, []float64{float64(i), float64((i * 3) % 11)})
		y = append(y, float64(i)*0.5+float64((i*3)%11))
	}

	a := newGBTRegressor()
	b := newGBTRegressor()
	require.NoError(t, a.fit(x, y))
	require.NoError(t, b.fit(x, y))

	for _, row := range x {
		assert.Equal(t, a.predict(row), b.predict(row))
	}
}

func TestGBT_RejectsBadInput(t *testing.T) {
	g := newGBTRegressor()
	assert.Error(t, g.fit(nil, nil))
	assert.Error(t, g.fit([][]float64{{1}}, []float64{1, 2}))
}
