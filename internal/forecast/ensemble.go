package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/indicators"
)

// Blend weights for [linear, polynomial, gradient-boosted], selected by the
// trailing percent-return volatility.
var (
	ensembleWeightsHighVol = [3]float64{0.2, 0.3, 0.5}
	ensembleWeightsLowVol  = [3]float64{0.4, 0.3, 0.3}
)

// highVolThreshold is the percent-return volatility above which the blend
// shifts weight toward the gradient-boosted model.
const highVolThreshold = 1.5

// Result is a single-horizon price forecast.
type Result struct {
	Price      float64     `json:"price"`
	ChangePct  float64     `json:"change"`
	Confidence float64     `json:"confidence"`
	Times      []time.Time `json:"times"`
}

// Output bundles the per-horizon forecasts with the volatility measured
// while producing them. The volatility feeds price-level planning.
type Output struct {
	Horizons         map[int]Result
	MarketVolatility float64
}

// Ensemble trains three regression models per forecast horizon and blends
// them into a point forecast with a confidence band.
type Ensemble struct {
	horizons   []int // in minutes
	cadence    time.Duration
	recentPoly int // training rows for the polynomial model
	log        zerolog.Logger
}

// NewEnsemble creates an ensemble for the 15/30/60-minute horizons at the
// series' 5-minute cadence.
func NewEnsemble(log zerolog.Logger) *Ensemble {
	return &Ensemble{
		horizons:   []int{15, 30, 60},
		cadence:    5 * time.Minute,
		recentPoly: 30,
		log:        log.With().Str("component", "forecast").Logger(),
	}
}

// Predict produces per-horizon forecasts. The frame's rows with any
// undefined column are dropped first; fewer than 20 usable rows yields no
// forecast for any horizon.
func (e *Ensemble) Predict(frame *indicators.Frame, uptrend bool, prices []float64, times []time.Time) (*Output, error) {
	valid := frame.DropUndefined()
	n := valid.Len()
	if n < indicators.MinSamples {
		return nil, apperrors.NewDataInsufficient("forecast", "predict",
			fmt.Sprintf("need at least %d fully defined rows, got %d", indicators.MinSamples, n))
	}
	if len(prices) == 0 || len(times) != len(prices) {
		return nil, apperrors.New(apperrors.CategoryDataInsufficient, "forecast", "predict", "price/time series mismatch")
	}

	features := featureMatrix(valid)
	target := valid.Close

	scalerX := fitScaler(features)
	xScaled := scalerX.transform(features)
	scalerY := fitColumnScaler(target)
	yScaled := scalerY.transform(target)

	trendCoefficient := 1.0
	if len(prices) > 10 {
		slope := weightedTrendSlope(prices[len(prices)-10:])
		if slope > 0 {
			trendCoefficient = 1.2 + math.Min(0.3, math.Abs(slope)*5)
		} else {
			trendCoefficient = 0.8 - math.Min(0.2, math.Abs(slope)*3)
		}
	}

	marketVolatility := returnStd(valid.Close) * 100
	volatilityFactor := math.Min(1.5, math.Max(0.5, 1+marketVolatility/10))

	weights := ensembleWeightsLowVol
	if marketVolatility > highVolThreshold {
		weights = ensembleWeightsHighVol
	}

	lastPrice := prices[len(prices)-1]
	lastTime := times[len(times)-1]
	lastRow := xScaled[n-1]

	results := make(map[int]Result, len(e.horizons))
	for _, horizon := range e.horizons {
		window := horizon / int(e.cadence.Minutes())
		if n <= window {
			continue
		}
		xTrain := xScaled[:n-window]
		yTrain := yScaled[window:]

		linear, err := fitLinear(xTrain, yTrain)
		if err != nil {
			e.log.Warn().Err(err).Int("horizon", horizon).Msg("linear fit failed, skipping horizon")
			continue
		}
		predLinear := linear.predict(lastRow)

		recent := e.recentPoly
		if len(xTrain) < recent {
			recent = len(xTrain)
		}
		predPoly := predLinear
		poly, err := fitLinear(polyExpandAll(xTrain[len(xTrain)-recent:]), yTrain[len(yTrain)-recent:])
		if err != nil {
			e.log.Warn().Err(err).Int("horizon", horizon).Msg("polynomial fit failed, reusing linear prediction")
		} else {
			predPoly = poly.predict(polyExpand(lastRow))
		}

		predBoosted := predLinear
		boosted := newGBTRegressor()
		if err := boosted.fit(xTrain, yTrain); err != nil {
			fitErr := apperrors.NewModelFit("forecast", "gbt", err)
			e.log.Warn().Err(fitErr).Int("horizon", horizon).Msg("gradient boosting failed, reusing linear prediction")
		} else {
			predBoosted = boosted.predict(lastRow)
		}

		blended := weights[0]*predLinear + weights[1]*predPoly + weights[2]*predBoosted
		predPrice := scalerY.inverse(blended)

		horizonScale := float64(horizon) / 15
		if uptrend {
			predPrice += lastPrice * 0.003 * trendCoefficient * horizonScale * volatilityFactor
		} else {
			predPrice -= lastPrice * 0.002 * (2 - trendCoefficient) * horizonScale * volatilityFactor
		}

		futureTimes := make([]time.Time, window)
		for i := 1; i <= window; i++ {
			futureTimes[i-1] = lastTime.Add(time.Duration(i) * e.cadence)
		}

		results[horizon] = Result{
			Price:      predPrice,
			ChangePct:  (predPrice - lastPrice) / lastPrice * 100,
			Confidence: marketVolatility * 0.1 * math.Sqrt(horizonScale),
			Times:      futureTimes,
		}
	}

	return &Output{Horizons: results, MarketVolatility: marketVolatility}, nil
}

// featureMatrix assembles the fixed ordered feature vector per row.
func featureMatrix(f *indicators.Frame) [][]float64 {
	n := f.Len()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = []float64{
			f.RSI[i],
			f.MACD[i],
			f.Signal[i],
			f.Volume[i],
			f.VolumeSMA5[i],
			f.PriceMA5[i],
			f.PriceMA20[i],
			f.Volatility[i],
			f.UpperBand[i],
			f.LowerBand[i],
			f.PriceDiff[i],
		}
	}
	return out
}

// returnStd is the population standard deviation of consecutive returns.
func returnStd(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	ss := 0.0
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(returns)))
}
