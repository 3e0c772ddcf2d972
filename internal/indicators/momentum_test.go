package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedMomentum(t *testing.T) {
	rising := make([]float64, 30)
	falling := make([]float64, 30)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 130 - float64(i)
	}

	assert.Greater(t, CombinedMomentum(rising), 0.0)
	assert.Less(t, CombinedMomentum(falling), 0.0)
}

func TestCombinedMomentum_ShortSeries(t *testing.T) {
	assert.Equal(t, 0.0, CombinedMomentum(nil))
	assert.Equal(t, 0.0, CombinedMomentum([]float64{100}))

	// Period adapts down instead of indexing out of range.
	short := []float64{100, 101, 102, 103}
	assert.Greater(t, CombinedMomentum(short), 0.0)
}

func TestAnnualizedVolatility(t *testing.T) {
	flat := []float64{100, 100, 100, 100, 100}
	assert.Equal(t, 0.0, AnnualizedVolatility(flat))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100}))

	noisy := []float64{100, 102, 99, 103, 98, 104}
	assert.Greater(t, AnnualizedVolatility(noisy), 0.0)
}
