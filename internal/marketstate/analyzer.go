package marketstate

import (
	"fmt"
	"math"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/indicators"
)

// Analyzer classifies an indicator frame into a qualitative market state.
// Rules are evaluated in a fixed order; later rules read flags set by
// earlier ones, so the order is part of the contract.
type Analyzer struct {
	trailingWindow  int     // lookback for divergence and volume rules
	slopeWindow     int     // rows used for moving-average slopes
	highVolumeRatio float64 // multiple of the fast volume MA marking a high-volume bar
	lowVolumeRatio  float64 // fraction of the fast volume MA marking a low-volume bar
}

// NewAnalyzer creates an analyzer with the standard thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		trailingWindow:  10,
		slopeWindow:     5,
		highVolumeRatio: 1.5,
		lowVolumeRatio:  0.7,
	}
}

// Analyze produces a fresh market state from the frame. The frame must have
// at least indicators.MinSamples rows; trailing reads are guarded against
// undefined leading values.
func (a *Analyzer) Analyze(f *indicators.Frame) (*State, error) {
	n := f.Len()
	if n < indicators.MinSamples {
		return nil, apperrors.NewDataInsufficient("marketstate", "analyze",
			fmt.Sprintf("need at least %d rows, got %d", indicators.MinSamples, n))
	}

	state := &State{TrendStrength: 0}

	a.classifyTrend(f, state)
	a.checkOscillatorExtremes(f, state)

	if n > 20 {
		a.detectDivergence(f, state)
		a.detectMomentumDeceleration(f, state)
		a.confirmDivergenceWithSignal(f, state)
		a.analyzeVolume(f, state)
	}

	if n > 30 {
		a.noteVolatilityContraction(f, state)
	}

	return state, nil
}

// classifyTrend compares the 5/20-sample moving-average slopes and the
// 5/20/50 alignment. Undefined slope values compare false and fall through
// to the partial-alignment branches.
func (a *Analyzer) classifyTrend(f *indicators.Frame, state *State) {
	n := f.Len()
	ma5 := f.PriceMA5[n-1]
	ma20 := f.PriceMA20[n-1]
	ma50 := f.PriceMA50[n-1]

	slope5 := (f.PriceMA5[n-1] - f.PriceMA5[n-a.slopeWindow]) / f.PriceMA5[n-a.slopeWindow] * 100
	slope20 := (f.PriceMA20[n-1] - f.PriceMA20[n-a.slopeWindow]) / f.PriceMA20[n-a.slopeWindow] * 100

	bullishAlignment := ma5 > ma20 && ma20 > ma50
	bearishAlignment := ma5 < ma20 && ma20 < ma50

	switch {
	case bullishAlignment && slope5 > 0 && slope20 > 0:
		state.Bullish = true
		state.explain("Bullish trend: MA5 > MA20 > MA50 with positive slopes")
		state.TrendStrength = clampStrength(50 + slope5*5)
	case bearishAlignment && slope5 < 0 && slope20 < 0:
		state.Bearish = true
		state.explain("Bearish trend: MA5 < MA20 < MA50 with negative slopes")
		state.TrendStrength = clampStrength(50 - slope5*5)
	case ma5 > ma20:
		state.Bullish = true
		state.explain("Moderate bullish trend: MA5 > MA20")
		state.TrendStrength = clampStrength(40 + slope5*3)
	default:
		state.Bearish = true
		state.explain("Moderate bearish trend: MA5 < MA20")
		state.TrendStrength = clampStrength(40 - slope5*3)
	}
}

func (a *Analyzer) checkOscillatorExtremes(f *indicators.Frame, state *State) {
	rsi := indicators.Last(f.RSI)
	switch {
	case rsi < 30:
		state.Oversold = true
		state.explain(fmt.Sprintf("Oversold: RSI = %.2f", rsi))
		if state.Bullish {
			state.PullbackOpportunity = true
			state.explain("Buying opportunity: oversold in a bullish trend")
		}
	case rsi > 70:
		state.Overbought = true
		state.explain(fmt.Sprintf("Overbought: RSI = %.2f", rsi))
		if state.Bearish {
			state.explain("Selling opportunity: overbought in a bearish trend")
		}
	}
}

// detectDivergence compares price and convergence-indicator extrema over the
// trailing window. A price peak lagging the indicator peak by more than two
// rows with a >2% price gap flags a potential reversal.
func (a *Analyzer) detectDivergence(f *indicators.Frame, state *State) {
	n := f.Len()
	prices := f.Close[n-a.trailingWindow:]
	macd := f.MACD[n-a.trailingWindow:]

	priceMaxIdx := argmax(prices)
	priceMinIdx := argmin(prices)
	macdMaxIdx := argmax(macd)
	macdMinIdx := argmin(macd)

	if priceMaxIdx > macdMaxIdx && abs(priceMaxIdx-macdMaxIdx) > 2 {
		state.explain("Bearish divergence detected: price rising while MACD falls (possible downward reversal)")
		if prices[priceMaxIdx] > prices[macdMaxIdx]*1.02 {
			state.PotentialReversal = true
			state.explain("Significant bearish divergence: the uptrend may be ending soon")
			state.ReversalRisk = math.Min(100, state.ReversalRisk+40)
			if state.Overbought {
				state.FalseBreakout = true
				state.explain("Overbought + bearish divergence: high probability of a false upward move")
			}
		}
	}

	if priceMinIdx > macdMinIdx && abs(priceMinIdx-macdMinIdx) > 2 {
		state.explain("Bullish divergence detected: price falling while MACD rises (possible upward reversal)")
		if prices[priceMinIdx] < prices[macdMinIdx]*0.98 {
			state.PotentialReversal = true
			state.explain("Significant bullish divergence: the downtrend may be ending soon")
			state.ReversalRisk = math.Min(100, state.ReversalRisk+40)
			if state.Oversold {
				state.FalseBreakdown = true
				state.explain("Oversold + bullish divergence: high probability of a false downward move")
			}
		}
	}
}

// detectMomentumDeceleration compares the convergence indicator's slope at
// the start and end of the trailing window. Same-signed slopes whose
// magnitude has halved raise the false-signal probability when the direction
// matches the prevailing trend.
func (a *Analyzer) detectMomentumDeceleration(f *indicators.Frame, state *State) {
	n := f.Len()
	macd := f.MACD[n-a.trailingWindow:]

	early := macd[1] - macd[0]
	late := macd[len(macd)-1] - macd[len(macd)-2]

	if early > 0 && late > 0 && late < early*0.5 {
		state.explain("MACD growth slowing: upward impulse may be weakening")
		if state.Bullish {
			state.FalseSignalProbability = math.Min(75, state.FalseSignalProbability+30)
		}
	}
	if early < 0 && late < 0 && math.Abs(late) < math.Abs(early)*0.5 {
		state.explain("MACD decline slowing: downward impulse may be weakening")
		if state.Bearish {
			state.FalseSignalProbability = math.Min(75, state.FalseSignalProbability+30)
		}
	}
}

// confirmDivergenceWithSignal repeats the divergence check against the
// signal line's own extrema with a stricter lag, adding a larger reversal
// risk independent of the overbought/oversold gate.
func (a *Analyzer) confirmDivergenceWithSignal(f *indicators.Frame, state *State) {
	n := f.Len()
	prices := f.Close[n-a.trailingWindow:]
	macd := f.MACD[n-a.trailingWindow:]
	signal := f.Signal[n-a.trailingWindow:]

	priceMaxIdx := argmax(prices)
	priceMinIdx := argmin(prices)
	macdMaxIdx := argmax(macd)
	macdMinIdx := argmin(macd)
	signalMaxIdx := argmax(signal)
	signalMinIdx := argmin(signal)

	if priceMaxIdx > macdMaxIdx && priceMaxIdx > signalMaxIdx && abs(priceMaxIdx-signalMaxIdx) > 3 {
		state.explain("Confirmed bearish divergence (price, MACD, signal line): high probability of a downward reversal")
		state.PotentialReversal = true
		state.ReversalRisk = math.Min(100, state.ReversalRisk+60)
	}
	if priceMinIdx > macdMinIdx && priceMinIdx > signalMinIdx && abs(priceMinIdx-signalMinIdx) > 3 {
		state.explain("Confirmed bullish divergence (price, MACD, signal line): high probability of an upward reversal")
		state.PotentialReversal = true
		state.ReversalRisk = math.Min(100, state.ReversalRisk+60)
	}
}

// analyzeVolume classifies the trailing window's high- and low-volume bars:
// direction flips on high volume flag false breakouts, sign alternation
// flags whipsaw, and low-volume counter-trend drift is read as a correction.
func (a *Analyzer) analyzeVolume(f *indicators.Frame, state *State) {
	n := f.Len()
	volume := f.Volume[n-a.trailingWindow:]
	volumeSMA := f.VolumeSMA5[n-a.trailingWindow:]
	closes := f.Close[n-a.trailingWindow:]

	firstHalfMean := mean(volume[:5])
	secondHalfMean := mean(volume[5:])
	if firstHalfMean > 0 {
		volumeTrend := (secondHalfMean/firstHalfMean - 1) * 100
		if volumeTrend > 20 {
			state.explain(fmt.Sprintf("Rising trading volume: +%.1f%%", volumeTrend))
		} else if volumeTrend < -20 {
			state.explain(fmt.Sprintf("Falling trading volume: %.1f%%", volumeTrend))
		}
	}

	var highVolume []int
	for i := range volume {
		if volume[i] > a.highVolumeRatio*volumeSMA[i] {
			highVolume = append(highVolume, i)
		}
	}

	if len(highVolume) > 0 {
		priceDirection := closes[highVolume[len(highVolume)-1]] - closes[highVolume[0]]

		if len(highVolume) >= 2 {
			half := len(highVolume) / 2
			firstBars := highVolume[:half]
			lastBars := highVolume[half:]
			firstDirection := closes[firstBars[len(firstBars)-1]] - closes[firstBars[0]]
			lastDirection := closes[lastBars[len(lastBars)-1]] - closes[lastBars[0]]

			if firstDirection > 0 && lastDirection < 0 && math.Abs(lastDirection) > math.Abs(firstDirection)*0.7 {
				state.FalseBreakout = true
				state.explain("False upward breakout detected: rally and sharp reversal down on high volume")
				state.FalseSignalProbability = math.Min(85, 50+math.Abs(lastDirection/firstDirection)*30)
				state.ReversalRisk = 75
			} else if firstDirection < 0 && lastDirection > 0 && math.Abs(lastDirection) > math.Abs(firstDirection)*0.7 {
				state.FalseBreakdown = true
				state.explain("False downward breakdown detected: drop and sharp reversal up on high volume")
				state.FalseSignalProbability = math.Min(85, 50+math.Abs(lastDirection/firstDirection)*30)
				state.ReversalRisk = 75
			}

			if len(highVolume) >= 3 {
				directions := make([]float64, 0, len(highVolume)-1)
				for i := 1; i < len(highVolume); i++ {
					directions = append(directions, sign(closes[highVolume[i]]-closes[highVolume[i-1]]))
				}
				changes := 0
				for i := 1; i < len(directions); i++ {
					if directions[i] != directions[i-1] {
						changes++
					}
				}
				if float64(changes) >= float64(len(directions))*0.6 {
					state.Whipsaw = true
					state.explain("Whipsaw market: sharp moves in alternating directions")
					state.VolatileConsolidation = true
				}
			}
		}

		if priceDirection > 0 {
			state.SmartMoneyBuying = true
			if state.Bullish {
				state.explain("Bullish trend confirmation: high volume with rising price")
			} else {
				state.explain("Possible trend change to bullish: high volume with rising price")
			}
		} else if priceDirection < 0 {
			state.SmartMoneySelling = true
			if state.Bearish {
				state.explain("Bearish trend confirmation: high volume with falling price")
			} else {
				state.explain("Possible trend change to bearish: high volume with falling price")
			}
		}
	}

	var lowVolume []int
	for i := range volume {
		if volume[i] < a.lowVolumeRatio*volumeSMA[i] {
			lowVolume = append(lowVolume, i)
		}
	}
	if len(lowVolume) > 0 {
		priceDirection := closes[lowVolume[len(lowVolume)-1]] - closes[lowVolume[0]]
		if priceDirection > 0 && state.Bearish {
			state.explain("Correction in a bearish trend: price rising on low volume")
		} else if priceDirection < 0 && state.Bullish {
			state.explain("Correction in a bullish trend: price falling on low volume")
			state.PullbackOpportunity = true
		}
	}
}

func (a *Analyzer) noteVolatilityContraction(f *indicators.Frame, state *State) {
	n := f.Len()
	current := f.VolatilityShort[n-1]
	previous := f.VolatilityShort[n-a.trailingWindow]
	if current < previous*0.7 {
		state.explain("Volatility declining: possible consolidation before the next move")
	}
}

func clampStrength(v float64) int {
	s := int(v)
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

// argmax returns the index of the first maximum, treating NaN as smaller
// than any value.
func argmax(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] || math.IsNaN(x[best]) {
			best = i
		}
	}
	return best
}

func argmin(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] < x[best] || math.IsNaN(x[best]) {
			best = i
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
