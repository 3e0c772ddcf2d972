package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidence_NeutralReasonsScoreFifty(t *testing.T) {
	reasons := []string{
		"Positive momentum (buy signal)",
		"MACD above signal line (buy signal, strength: 2.0)",
	}
	assert.Equal(t, 50, Confidence(reasons, nil, 0, 1.0))
}

func TestConfidence_AllBullish(t *testing.T) {
	reasons := []string{
		"RSI shows oversold (strong buy signal)",
		"Established bullish trend (strength: 60%)",
	}
	assert.Equal(t, 100, Confidence(reasons, nil, 0, 1.0))
}

func TestConfidence_AllBearishScoresZero(t *testing.T) {
	reasons := []string{
		"RSI shows overbought in a downtrend (strong sell signal)",
		"Established bearish trend (strength: 70%)",
	}
	assert.Equal(t, 0, Confidence(reasons, nil, 0, 1.0))
}

func TestConfidence_VolatilityDiscounts(t *testing.T) {
	reasons := []string{"RSI shows oversold (strong buy signal)"}

	assert.Equal(t, 70, Confidence(reasons, nil, 0, 2.5))
	assert.Equal(t, 80, Confidence(reasons, nil, 0, 1.8))
	assert.Equal(t, 100, Confidence(reasons, nil, 0, 1.0))
	// The calm-market boost is clamped at the ceiling.
	assert.Equal(t, 100, Confidence(reasons, nil, 0, 0.3))
}

func TestConfidence_SharpMoveDiscount(t *testing.T) {
	reasons := []string{"RSI shows oversold (strong buy signal)"}
	assert.Equal(t, 90, Confidence(reasons, nil, 3.0, 1.0))
	assert.Equal(t, 90, Confidence(reasons, nil, -2.5, 1.0))
}

func TestConfidence_ContradictorySignals(t *testing.T) {
	reasons := []string{
		"RSI shows oversold (strong buy signal)",
		"RSI below normal in an uptrend (moderate buy signal)",
		"RSI shows overbought in a downtrend (strong sell signal)",
		"RSI above normal in a downtrend (moderate sell signal)",
	}
	// base (2+0)/4*100 = 50, contradictory factor 0.85.
	assert.Equal(t, 42, Confidence(reasons, nil, 0, 1.0))
}

func TestConfidence_NoReasons(t *testing.T) {
	assert.Equal(t, 0, Confidence(nil, nil, 0, 1.0))
}

func TestConfidence_CalmMarketBoost(t *testing.T) {
	reasons := []string{
		"Positive momentum (buy signal)",
		"Negative price move (weak sell signal)",
	}
	// base 50 with the 1.2 calm-market factor.
	assert.Equal(t, 60, Confidence(reasons, nil, 0, 0.3))
}
