package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prismtrade/prismtrade/internal/marketstate"
)

func TestScore_StrongBuyWithoutState(t *testing.T) {
	s := NewScorer()
	rec := s.Score(Input{
		RSI:         50,
		MACD:        1,
		Signal:      0.5,
		PriceChange: 2,
		Momentum:    2,
		Price:       100,
	}, nil)

	// +3 MACD, +3 strong price move, +1 momentum.
	assert.InDelta(t, 7.0, rec.Score, 1e-9)
	assert.Equal(t, SignalStrongBuy, rec.Signal)
	assert.Contains(t, rec.Reasons, "Positive price move > 1.5% (strong buy signal)")
	assert.Contains(t, rec.Reasons, "Positive momentum (weak buy signal)")
}

func TestScore_StrongSellInBearishTrend(t *testing.T) {
	state := &marketstate.State{Bearish: true, TrendStrength: 80}
	s := NewScorer()
	rec := s.Score(Input{
		RSI:         75,
		MACD:        -1,
		Signal:      -0.5,
		PriceChange: -3,
		Momentum:    -5,
		Price:       100,
	}, state)

	// -3 RSI, -2.5 MACD, -2 price, -2 momentum, -2 strong trend, -1.7 adjustment.
	assert.InDelta(t, -13.2, rec.Score, 1e-9)
	assert.Equal(t, SignalStrongSell, rec.Signal)
	assert.Contains(t, rec.Reasons, "Established bearish trend (strength: 80%)")
	assert.Contains(t, rec.Reasons, "Very strong bearish trend (strength: 80%)")
}

func TestScore_FlatInputLeansWeakSell(t *testing.T) {
	s := NewScorer()
	rec := s.Score(Input{RSI: 50, Price: 100}, nil)

	// Only the MACD<=signal rule fires at its floor strength.
	assert.InDelta(t, -0.35, rec.Score, 1e-9)
	assert.Equal(t, SignalWeakSell, rec.Signal)
}

func TestScore_CorrectionInUptrendFavorsBuying(t *testing.T) {
	state := &marketstate.State{
		Bullish:         true,
		Correction:      true,
		TrendStrength:   70,
		CorrectionDepth: 2.5,
	}
	s := NewScorer()
	rec := s.Score(Input{
		RSI:         35,
		MACD:        -0.2,
		Signal:      -0.1,
		PriceChange: -1,
		Momentum:    -3,
		Price:       100,
	}, state)

	assert.Greater(t, rec.Score, 3.0)
	assert.Equal(t, SignalStrongBuy, rec.Signal)
	assert.Contains(t, rec.Reasons, "Correction within the trend detected (depth: 2.50%)")
	assert.Contains(t, rec.Reasons, "Correction in an uptrend (good buying opportunity)")
	assert.Contains(t, rec.Reasons, "MACD below signal line in an uptrend correction (ignoring weak signal)")
}

func TestScore_MovingAverageRule(t *testing.T) {
	s := NewScorer()
	ma5 := 102.0
	ma20 := 100.0

	rising := s.Score(Input{RSI: 50, MACD: 1, Signal: 0.5, Price: 100, MA5: &ma5, MA20: &ma20}, nil)
	falling := s.Score(Input{RSI: 50, MACD: 1, Signal: 0.5, Price: 100, MA5: &ma20, MA20: &ma5}, nil)
	without := s.Score(Input{RSI: 50, MACD: 1, Signal: 0.5, Price: 100}, nil)

	assert.Greater(t, rising.Score, without.Score)
	assert.Less(t, falling.Score, without.Score)
	assert.Contains(t, rising.Reasons, "Rising MA trend (MA5 > MA20, divergence: 2.00%, buy signal)")
}

func TestScore_PullbackCountsTwice(t *testing.T) {
	with := &marketstate.State{Bullish: true, TrendStrength: 60, PullbackOpportunity: true}
	withoutPullback := &marketstate.State{Bullish: true, TrendStrength: 60}

	s := NewScorer()
	in := Input{RSI: 45, MACD: 0.5, Signal: 0.2, PriceChange: 0.5, Momentum: 0.5, Price: 100}
	a := s.Score(in, with)
	b := s.Score(in, withoutPullback)

	assert.InDelta(t, 2.0, a.Score-b.Score, 1e-9)
	assert.Contains(t, a.Reasons, "Good pullback entry opportunity")
	assert.Contains(t, a.Reasons, "Good pullback entry opportunity detected")
}

func TestSignalFor_Boundaries(t *testing.T) {
	assert.Equal(t, SignalStrongBuy, signalFor(3))
	assert.Equal(t, SignalWeakBuy, signalFor(2.9))
	assert.Equal(t, SignalWeakBuy, signalFor(0.1))
	assert.Equal(t, SignalWeakSell, signalFor(0))
	assert.Equal(t, SignalWeakSell, signalFor(-2.9))
	assert.Equal(t, SignalStrongSell, signalFor(-3))
}
