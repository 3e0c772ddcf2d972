package recommend

import (
	"fmt"
	"math"

	"github.com/prismtrade/prismtrade/internal/marketstate"
)

// Signal labels returned by the scorer.
const (
	SignalStrongBuy  = "BUY (LONG) - Strong signal"
	SignalWeakBuy    = "BUY (LONG) - Weak signal"
	SignalWeakSell   = "SELL (SHORT) - Weak signal"
	SignalStrongSell = "SELL (SHORT) - Strong signal"
)

// Input bundles the indicator snapshot the scorer works from. MA5 and MA20
// are optional; when either is nil the moving-average rule is skipped.
type Input struct {
	RSI         float64
	MACD        float64
	Signal      float64
	PriceChange float64 // percent change over the analyzed window
	Momentum    float64
	Price       float64
	MA5         *float64
	MA20        *float64
}

// Recommendation is a scored trade signal with its contributing reasons.
type Recommendation struct {
	Signal  string   `json:"signal"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// trendContext is the market-state view the scoring rules condition on.
// A nil state yields the neutral defaults.
type trendContext struct {
	bullish         bool
	bearish         bool
	correction      bool
	pullback        bool
	trendStrength   int
	correctionDepth float64
}

func contextFrom(state *marketstate.State) trendContext {
	if state == nil {
		return trendContext{trendStrength: 50}
	}
	return trendContext{
		bullish:         state.Bullish,
		bearish:         state.Bearish,
		correction:      state.Correction,
		pullback:        state.PullbackOpportunity,
		trendStrength:   state.TrendStrength,
		correctionDepth: state.CorrectionDepth,
	}
}

// Scorer accumulates weighted rule contributions into a trade signal.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

// Score evaluates the rule set against the snapshot and market state.
func (s *Scorer) Score(in Input, state *marketstate.State) Recommendation {
	ctx := contextFrom(state)
	score := 0.0
	var reasons []string

	if ctx.bullish {
		reasons = append(reasons, fmt.Sprintf("Established bullish trend (strength: %d%%)", ctx.trendStrength))
	}
	if ctx.bearish {
		reasons = append(reasons, fmt.Sprintf("Established bearish trend (strength: %d%%)", ctx.trendStrength))
	}
	if ctx.correction {
		reasons = append(reasons, fmt.Sprintf("Correction within the trend detected (depth: %.2f%%)", ctx.correctionDepth))
	}
	if ctx.pullback {
		reasons = append(reasons, "Good pullback entry opportunity")
	}

	switch {
	case in.RSI < 30:
		if ctx.bullish {
			score += 4
			reasons = append(reasons, "RSI shows oversold in an uptrend (very strong buy signal)")
		} else {
			score += 3
			reasons = append(reasons, "RSI shows oversold (strong buy signal)")
		}
	case in.RSI < 40:
		if ctx.bullish {
			score += 2
			reasons = append(reasons, "RSI below normal in an uptrend (moderate buy signal)")
		} else {
			score += 1
			reasons = append(reasons, "RSI below normal (moderate buy signal)")
		}
	case in.RSI > 70:
		if ctx.bearish {
			score -= 3
			reasons = append(reasons, "RSI shows overbought in a downtrend (strong sell signal)")
		} else {
			score -= 2
			reasons = append(reasons, "RSI shows overbought (sell signal)")
		}
		if ctx.bullish && ctx.correction {
			score += 2
			reasons = append(reasons, "High RSI within an uptrend correction (ignoring the sell signal)")
		}
	case in.RSI > 60:
		if ctx.bearish {
			score -= 2
			reasons = append(reasons, "RSI above normal in a downtrend (moderate sell signal)")
		} else {
			score -= 1
			reasons = append(reasons, "RSI above normal (weak sell signal)")
		}
		if ctx.bullish {
			score += 1
			reasons = append(reasons, "Moderately high RSI in an uptrend (neutralizing the signal)")
		}
	}

	macdDiff := in.MACD - in.Signal
	if in.MACD > in.Signal {
		strength := math.Min(3, 1+math.Abs(macdDiff)*5)
		if ctx.bullish {
			score += strength + 1
			reasons = append(reasons, "MACD above signal line in an uptrend (strong buy signal)")
		} else {
			score += strength
			reasons = append(reasons, fmt.Sprintf("MACD above signal line (buy signal, strength: %.1f)", strength))
		}
	} else {
		strength := math.Min(2, 0.5+math.Abs(macdDiff)*3)
		switch {
		case ctx.bullish && ctx.correction:
			score -= strength * 0.3
			reasons = append(reasons, "MACD below signal line in an uptrend correction (ignoring weak signal)")
		case ctx.bearish:
			score -= strength + 0.5
			reasons = append(reasons, "MACD below signal line in a downtrend (sell signal)")
		default:
			score -= strength * 0.7
			reasons = append(reasons, "MACD below signal line (weak sell signal)")
		}
	}

	switch {
	case ctx.bullish && ctx.correction && in.PriceChange < 0:
		score += 2
		reasons = append(reasons, "Correction in an uptrend (good buying opportunity)")
	case ctx.bearish && ctx.correction && in.PriceChange > 0:
		score -= 2
		reasons = append(reasons, "Correction in a downtrend (selling opportunity)")
	case in.PriceChange > 1.5:
		if ctx.bearish && !ctx.correction {
			score += 1
			reasons = append(reasons, "Positive price move > 1.5% in a downtrend (possible rebound)")
		} else {
			score += 3
			reasons = append(reasons, "Positive price move > 1.5% (strong buy signal)")
		}
	case in.PriceChange > 0:
		if ctx.bullish {
			score += 2
			reasons = append(reasons, "Positive price move in an uptrend (amplified buy signal)")
		} else {
			score += 1
			reasons = append(reasons, "Positive price move (weak buy signal)")
		}
	case in.PriceChange < -2.0:
		if ctx.bullish && ctx.correction {
			score += 2
			reasons = append(reasons, "Negative move > 2.0% as an uptrend correction (buy opportunity)")
		} else {
			score -= 2
			reasons = append(reasons, "Negative price move < -2.0% (sell signal)")
		}
	case in.PriceChange < 0:
		if ctx.bullish && ctx.correction {
			score += 1
			reasons = append(reasons, "Negative price move within an uptrend correction (buy opportunity)")
		} else {
			score -= 1
			reasons = append(reasons, "Negative price move (weak sell signal)")
		}
	}

	switch {
	case in.Momentum > 3:
		score += 2
		reasons = append(reasons, "Strong positive momentum (buy signal)")
	case in.Momentum > 1:
		score += 1
		reasons = append(reasons, "Positive momentum (weak buy signal)")
	case in.Momentum < -4:
		if ctx.bullish && ctx.correction {
			score += 1
			reasons = append(reasons, "Negative momentum in an uptrend correction (buy opportunity)")
		} else {
			score -= 2
			reasons = append(reasons, "Strong negative momentum (sell signal)")
		}
	case in.Momentum < -2:
		if ctx.bullish && ctx.correction {
			score += 0.5
			reasons = append(reasons, "Moderate negative momentum in an uptrend correction (neutral signal)")
		} else {
			score -= 1
			reasons = append(reasons, "Negative momentum (weak sell signal)")
		}
	}

	if in.MA5 != nil && in.MA20 != nil {
		ma5, ma20 := *in.MA5, *in.MA20
		if ma5 > ma20 {
			maDiff := (ma5/ma20 - 1) * 100
			score += math.Min(3, 1+maDiff*0.5)
			reasons = append(reasons, fmt.Sprintf("Rising MA trend (MA5 > MA20, divergence: %.2f%%, buy signal)", maDiff))
		} else {
			maDiff := (ma20/ma5 - 1) * 100
			maScore := math.Min(2, 0.5+maDiff*0.4)
			if ctx.bullish && ctx.correction {
				score -= maScore * 0.3
				reasons = append(reasons, "MA5 < MA20 in an uptrend correction (weak signal)")
			} else {
				score -= maScore
				reasons = append(reasons, fmt.Sprintf("Falling MA trend (MA5 < MA20, divergence: %.2f%%, sell signal)", maDiff))
			}
		}
	}

	if ctx.pullback {
		score += 2
		reasons = append(reasons, "Good pullback entry opportunity detected")
	}

	if ctx.trendStrength > 70 {
		if ctx.bullish {
			score += 2
			reasons = append(reasons, fmt.Sprintf("Very strong bullish trend (strength: %d%%)", ctx.trendStrength))
		} else if ctx.bearish {
			score -= 2
			reasons = append(reasons, fmt.Sprintf("Very strong bearish trend (strength: %d%%)", ctx.trendStrength))
		}
	}

	adjustment := 0.5 + float64(ctx.trendStrength)/100*1.5
	if ctx.bullish {
		score += adjustment
		reasons = append(reasons, fmt.Sprintf("Adjustment for uptrend strength: +%.2f", adjustment))
	} else if ctx.bearish {
		score -= adjustment
		reasons = append(reasons, fmt.Sprintf("Adjustment for downtrend strength: -%.2f", adjustment))
	}

	return Recommendation{Signal: signalFor(score), Score: score, Reasons: reasons}
}

func signalFor(score float64) string {
	switch {
	case score >= 3:
		return SignalStrongBuy
	case score > 0:
		return SignalWeakBuy
	case score > -3:
		return SignalWeakSell
	default:
		return SignalStrongSell
	}
}
