package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

// generateTestData builds a gently rising series with a small oscillation,
// long enough to form every rolling window.
func generateTestData(n int) ([]float64, []float64) {
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100.0 + 0.5*float64(i) + 0.3*math.Sin(float64(i)/3)
		volumes[i] = 1000.0 + 50.0*math.Sin(float64(i)/2)
	}
	return closes, volumes
}

func TestEngine_Compute_TooFewSamples(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(19)

	_, err := engine.Compute(closes, volumes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
}

func TestEngine_Compute_LengthMismatch(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(30)

	_, err := engine.Compute(closes, volumes[:29])
	require.Error(t, err)
}

func TestEngine_Compute_OscillatorRange(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(120)

	frame, err := engine.Compute(closes, volumes)
	require.NoError(t, err)

	for i, v := range frame.RSI {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "RSI[%d] below range", i)
		assert.LessOrEqual(t, v, 100.0, "RSI[%d] above range", i)
	}

	// A steadily rising series should read as strong momentum.
	assert.Greater(t, frame.RSI[len(frame.RSI)-1], 50.0)
}

func TestEngine_Compute_BandFactorRange(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(120)

	frame, err := engine.Compute(closes, volumes)
	require.NoError(t, err)

	for i := range frame.BandFactor {
		v := frame.BandFactor[i]
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 1.5, "band factor[%d]", i)
		assert.LessOrEqual(t, v, 3.0, "band factor[%d]", i)
		assert.GreaterOrEqual(t, frame.UpperBand[i], frame.LowerBand[i], "bands inverted at %d", i)
	}
}

func TestEngine_Compute_Deterministic(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(100)

	first, err := engine.Compute(closes, volumes)
	require.NoError(t, err)
	second, err := engine.Compute(closes, volumes)
	require.NoError(t, err)

	// NaN never compares equal, so compare the fully defined view.
	assert.Equal(t, first.DropUndefined(), second.DropUndefined())
}

func TestFrame_DropUndefined(t *testing.T) {
	engine := NewEngine()
	closes, volumes := generateTestData(120)

	frame, err := engine.Compute(closes, volumes)
	require.NoError(t, err)

	from := frame.ValidFrom()
	assert.Greater(t, from, 0, "leading rows should be undefined")

	valid := frame.DropUndefined()
	assert.Equal(t, frame.Len()-from, valid.Len())
	for colIdx, col := range valid.columns() {
		for i, v := range col {
			require.False(t, math.IsNaN(v), "column %d row %d still undefined", colIdx, i)
		}
	}
}

func TestFrame_DropUndefined_ShortSeries(t *testing.T) {
	// At 30 samples the long moving average window shrinks to n-1, leaving
	// too few fully defined rows for model training but enough to analyze.
	engine := NewEngine()
	closes, volumes := generateTestData(30)

	frame, err := engine.Compute(closes, volumes)
	require.NoError(t, err)

	valid := frame.DropUndefined()
	assert.Less(t, valid.Len(), MinSamples)
	assert.Greater(t, valid.Len(), 0)
}
