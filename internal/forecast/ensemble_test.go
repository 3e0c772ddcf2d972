package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/indicators"
)

func forecastFixture(t *testing.T, n int) (*indicators.Frame, []float64, []time.Time) {
	t.Helper()

	closes := make([]float64, n)
	volumes := make([]float64, n)
	times := make([]time.Time, n)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		closes[i] = 100 + 0.5*float64(i) + 0.3*math.Sin(float64(i)/3)
		volumes[i] = 1000 + 10*float64(i%7)
		times[i] = start.Add(time.Duration(i) * 5 * time.Minute)
	}

	frame, err := indicators.NewEngine().Compute(closes, volumes)
	require.NoError(t, err)
	return frame, closes, times
}

func TestEnsemble_PredictAllHorizons(t *testing.T) {
	frame, closes, times := forecastFixture(t, 120)

	e := NewEnsemble(zerolog.Nop())
	out, err := e.Predict(frame, true, closes, times)
	require.NoError(t, err)
	require.NotNil(t, out)

	lastPrice := closes[len(closes)-1]
	lastTime := times[len(times)-1]
	for _, horizon := range []int{15, 30, 60} {
		res, ok := out.Horizons[horizon]
		require.True(t, ok, "missing horizon %d", horizon)

		assert.False(t, math.IsNaN(res.Price), "horizon %d price", horizon)
		assert.Greater(t, res.Price, 0.0)
		assert.InDelta(t, (res.Price-lastPrice)/lastPrice*100, res.ChangePct, 1e-9)

		steps := horizon / 5
		require.Len(t, res.Times, steps)
		for i, ts := range res.Times {
			assert.Equal(t, lastTime.Add(time.Duration(i+1)*5*time.Minute), ts)
		}
	}

	// The confidence band widens with the square root of the horizon.
	assert.InDelta(t, 2*out.Horizons[15].Confidence, out.Horizons[60].Confidence, 1e-12)
	assert.GreaterOrEqual(t, out.MarketVolatility, 0.0)
}

func TestEnsemble_UptrendShiftsForecastUp(t *testing.T) {
	frame, closes, times := forecastFixture(t, 120)

	e := NewEnsemble(zerolog.Nop())
	up, err := e.Predict(frame, true, closes, times)
	require.NoError(t, err)
	down, err := e.Predict(frame, false, closes, times)
	require.NoError(t, err)

	for _, horizon := range []int{15, 30, 60} {
		assert.Greater(t, up.Horizons[horizon].Price, down.Horizons[horizon].Price,
			"horizon %d", horizon)
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	frame, closes, times := forecastFixture(t, 120)

	e := NewEnsemble(zerolog.Nop())
	first, err := e.Predict(frame, true, closes, times)
	require.NoError(t, err)
	second, err := e.Predict(frame, true, closes, times)
	require.NoError(t, err)

	require.Equal(t, len(first.Horizons), len(second.Horizons))
	for horizon, res := range first.Horizons {
		assert.Equal(t, res.Price, second.Horizons[horizon].Price, "horizon %d", horizon)
	}
}

func TestEnsemble_InsufficientRows(t *testing.T) {
	frame, closes, times := forecastFixture(t, 30)

	e := NewEnsemble(zerolog.Nop())
	_, err := e.Predict(frame, true, closes, times)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
}

func TestEnsemble_SeriesMismatch(t *testing.T) {
	frame, closes, times := forecastFixture(t, 120)

	e := NewEnsemble(zerolog.Nop())
	_, err := e.Predict(frame, true, closes, times[:len(times)-1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))

	_, err = e.Predict(frame, true, nil, nil)
	require.Error(t, err)
}

func TestReturnStd(t *testing.T) {
	assert.Equal(t, 0.0, returnStd([]float64{100}))
	// Constant returns have zero dispersion.
	assert.InDelta(t, 0.0, returnStd([]float64{100, 101, 102.01}), 1e-9)
	assert.Greater(t, returnStd([]float64{100, 105, 100, 105}), 0.0)
}
