package recommend

import (
	"math"

	"github.com/prismtrade/prismtrade/internal/marketstate"
)

// PriceLevels holds the entry, exit and stop levels for both directions,
// plus a suggested holding period in hours.
type PriceLevels struct {
	EntryBuy      float64 `json:"entry_price_buy"`
	ExitBuy       float64 `json:"exit_price_buy"`
	StopLossBuy   float64 `json:"stop_loss_buy"`
	EntrySell     float64 `json:"entry_price_sell"`
	ExitSell      float64 `json:"exit_price_sell"`
	StopLossSell  float64 `json:"stop_loss_sell"`
	HoldingPeriod int     `json:"holding_period"`
}

// Planner derives trade levels from the current price, market state and
// observed volatility.
type Planner struct{}

func NewPlanner() *Planner { return &Planner{} }

// PlanLevels computes the level set. prevVolatility, when non-nil, is the
// annualized volatility from the previous analysis; otherwise the absolute
// value of fallbackVolatility (the window percent change) is used.
func (p *Planner) PlanLevels(currentPrice float64, state *marketstate.State, prevVolatility *float64, fallbackVolatility float64) PriceLevels {
	ctx := contextFrom(state)
	ts := float64(ctx.trendStrength)

	minProfitBuy := 1.0
	minProfitSell := 0.5
	if ctx.bullish {
		bonus := ts / 100 * 1.5
		minProfitBuy += bonus
		minProfitSell = math.Max(0.3, minProfitSell-bonus*0.3)
	} else if ctx.bearish {
		bonus := ts / 100 * 1.2
		minProfitSell += bonus
		minProfitBuy = math.Max(0.5, minProfitBuy-bonus*0.3)
	}

	entryAdjustment := 1.0
	if ctx.bullish && ctx.correction {
		entryAdjustment = 0.5 + ctx.correctionDepth/10
		minProfitBuy *= 1.2
	}

	volCoeffBuy := 1.5
	volCoeffSell := 1.0
	if ctx.bullish {
		volCoeffBuy += ts / 100 * 0.5
		volCoeffSell -= ts / 100 * 0.3
	} else if ctx.bearish {
		volCoeffBuy -= ts / 100 * 0.3
		volCoeffSell += ts / 100 * 0.5
	}

	realVolatility := math.Abs(fallbackVolatility)
	if prevVolatility != nil {
		realVolatility = *prevVolatility
	}

	var targetBuy, targetSell float64
	switch {
	case realVolatility < 0.8:
		targetBuy = math.Max(minProfitBuy, 1.2)
		targetSell = math.Max(minProfitSell, 1.5)
	case realVolatility < 1.5:
		targetBuy = math.Max(minProfitBuy, 1.8)
		targetSell = math.Max(minProfitSell, 2.0)
	default:
		targetBuy = math.Max(minProfitBuy, realVolatility*volCoeffBuy)
		targetSell = math.Max(minProfitSell, realVolatility*volCoeffSell)
	}

	switch {
	case ctx.bullish:
		targetBuy = math.Min(targetBuy, 6.0)
		targetSell = math.Min(targetSell, 2.5)
	case ctx.bearish:
		targetBuy = math.Min(targetBuy, 3.0)
		targetSell = math.Min(targetSell, 4.0)
	default:
		targetBuy = math.Min(targetBuy, 4.5)
		targetSell = math.Min(targetSell, 3.5)
	}

	entryBuy := currentPrice * 0.9990
	if ctx.bullish && ctx.pullback {
		entryBuy = currentPrice * (0.9990 - entryAdjustment*0.001)
	}
	exitBuy := currentPrice * (1 + targetBuy/100)

	entrySell := currentPrice * 1.0015
	if ctx.bearish && ctx.correction && ctx.pullback {
		entrySell = currentPrice * (1.0015 + entryAdjustment*0.001)
	}
	exitSell := currentPrice * (1 - targetSell/100)

	var stopPctBuy, stopPctSell float64
	switch {
	case ctx.bullish:
		stopPctBuy = math.Min(targetBuy/3.5, 1.0)
		stopPctSell = math.Min(targetSell/2.0, 2.0)
	case ctx.bearish:
		stopPctBuy = math.Min(targetBuy/2.5, 1.8)
		stopPctSell = math.Min(targetSell/3.0, 1.2)
	default:
		stopPctBuy = math.Min(targetBuy/3, 1.2)
		stopPctSell = math.Min(targetSell/2.5, 1.5)
	}
	if ctx.bullish && ctx.correction {
		stopPctBuy *= 0.8
	} else if ctx.bearish && ctx.correction {
		stopPctSell *= 0.8
	}

	holding := 1
	if ctx.bullish {
		holding = max(1, int(2+ts/20))
	} else if ctx.bearish {
		holding = max(1, int(1.5+ts/25))
	}
	if realVolatility < 1.0 {
		holding = int(float64(holding) * 1.5)
	}

	return PriceLevels{
		EntryBuy:      entryBuy,
		ExitBuy:       exitBuy,
		StopLossBuy:   currentPrice * (1 - stopPctBuy/100),
		EntrySell:     entrySell,
		ExitSell:      exitSell,
		StopLossSell:  currentPrice * (1 + stopPctSell/100),
		HoldingPeriod: holding,
	}
}
