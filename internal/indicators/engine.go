package indicators

import (
	"fmt"
	"math"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

// MinSamples is the minimum series length required for any analysis.
const MinSamples = 20

// annualization converts per-bar return deviation to a yearly figure.
var annualization = math.Sqrt(252)

// Engine computes the indicator frame from a close/volume series.
type Engine struct {
	rsiPeriod     int
	rsiFastPeriod int

	macdFast   int
	macdSlow   int
	macdSignal int

	bandPeriod int

	volumeFast int
	volumeSlow int

	atrPeriod   int
	stochPeriod int
	stochSmooth int

	tenkanPeriod int
	kijunPeriod  int
}

// NewEngine creates an engine with the standard parameter set.
func NewEngine() *Engine {
	return &Engine{
		rsiPeriod:     14,
		rsiFastPeriod: 5,
		macdFast:      12,
		macdSlow:      26,
		macdSignal:    9,
		bandPeriod:    20,
		volumeFast:    5,
		volumeSlow:    20,
		atrPeriod:     14,
		stochPeriod:   14,
		stochSmooth:   3,
		tenkanPeriod:  9,
		kijunPeriod:   26,
	}
}

// Compute derives the full indicator frame for the given close prices and
// volumes. Both slices must have the same length of at least MinSamples.
func (e *Engine) Compute(closes, volumes []float64) (*Frame, error) {
	if len(closes) != len(volumes) {
		return nil, apperrors.New(apperrors.CategoryDataInsufficient, "indicators", "compute",
			fmt.Sprintf("close/volume length mismatch: %d != %d", len(closes), len(volumes)))
	}
	if len(closes) < MinSamples {
		return nil, apperrors.NewDataInsufficient("indicators", "compute",
			fmt.Sprintf("need at least %d samples, got %d", MinSamples, len(closes)))
	}

	n := len(closes)
	f := &Frame{
		Close:  append([]float64(nil), closes...),
		Volume: append([]float64(nil), volumes...),
	}

	delta := diff(closes)
	f.RSI = e.oscillator(delta, 1/float64(e.rsiPeriod))
	f.RSIFast = e.oscillator(delta, 1/float64(e.rsiFastPeriod))

	fast := ewmSpan(closes, e.macdFast)
	slow := ewmSpan(closes, e.macdSlow)
	f.MACD = make([]float64, n)
	for i := range f.MACD {
		f.MACD[i] = fast[i] - slow[i]
	}
	f.Signal = ewmSpan(f.MACD, e.macdSignal)
	f.Hist = make([]float64, n)
	for i := range f.Hist {
		f.Hist[i] = f.MACD[i] - f.Signal[i]
	}
	f.MACDDiff = diff(f.MACD)

	f.SMA20 = rollMean(closes, e.bandPeriod)
	f.Std20 = rollStd(closes, e.bandPeriod)

	returns := pctChange(closes)
	returnsStd := rollStd(returns, e.bandPeriod)
	f.BandFactor = make([]float64, n)
	f.UpperBand = make([]float64, n)
	f.LowerBand = make([]float64, n)
	f.BandWidth = make([]float64, n)
	f.PercentB = make([]float64, n)
	for i := 0; i < n; i++ {
		f.BandFactor[i] = clamp(2+returnsStd[i]*100/10, 1.5, 3.0)
		f.UpperBand[i] = f.SMA20[i] + f.Std20[i]*f.BandFactor[i]
		f.LowerBand[i] = f.SMA20[i] - f.Std20[i]*f.BandFactor[i]
		f.BandWidth[i] = (f.UpperBand[i] - f.LowerBand[i]) / f.SMA20[i] * 100
		width := f.UpperBand[i] - f.LowerBand[i]
		if width == 0 {
			width = epsilon
		}
		f.PercentB[i] = (closes[i] - f.LowerBand[i]) / width
	}

	f.VolumeSMA5 = rollMean(volumes, e.volumeFast)
	f.VolumeSMA20 = rollMean(volumes, e.volumeSlow)
	f.VolumeChange = nans(n)
	for i := 1; i < n; i++ {
		prev := volumes[i-1]
		if prev == 0 {
			prev = epsilon
		}
		f.VolumeChange[i] = (volumes[i]/prev - 1) * 100
	}
	f.VolumeOsc = make([]float64, n)
	for i := 0; i < n; i++ {
		slow := f.VolumeSMA20[i]
		if slow == 0 {
			slow = epsilon
		}
		f.VolumeOsc[i] = (f.VolumeSMA5[i]/slow - 1) * 100
	}

	adFlow := make([]float64, n)
	for i := 0; i < n; i++ {
		hlRange := math.Abs(deltaAt(delta, i))
		factor := 0.0
		if hlRange > 0 {
			factor = delta[i] / hlRange
		}
		adFlow[i] = factor * volumes[i]
	}
	f.ADLine = cumsum(adFlow)

	f.PriceMA5 = rollMean(closes, 5)
	f.PriceMA10 = rollMean(closes, 10)
	f.PriceMA20 = rollMean(closes, 20)
	longWindow := 50
	if n-1 < longWindow {
		longWindow = n - 1
	}
	f.PriceMA50 = rollMean(closes, longWindow)
	f.MAConvergence = make([]float64, n)
	for i := 0; i < n; i++ {
		f.MAConvergence[i] = (f.PriceMA5[i]/f.PriceMA20[i] - 1) * 100
	}

	shortStd := rollStd(returns, 5)
	f.VolatilityShort = make([]float64, n)
	f.Volatility = make([]float64, n)
	for i := 0; i < n; i++ {
		f.VolatilityShort[i] = shortStd[i] * annualization
		f.Volatility[i] = returnsStd[i] * annualization
	}

	high := rollMax(closes, 2)
	low := rollMin(closes, 2)
	f.TrueRange = nans(n)
	for i := 1; i < n; i++ {
		tr1 := high[i] - low[i]
		tr2 := math.Abs(high[i] - closes[i-1])
		tr3 := math.Abs(low[i] - closes[i-1])
		f.TrueRange[i] = math.Max(tr1, math.Max(tr2, tr3))
	}
	f.ATR = rollMean(f.TrueRange, e.atrPeriod)

	f.Momentum = scale(pctChangeN(closes, 10), 100)
	f.ROC5 = scale(pctChangeN(closes, 5), 100)
	f.ROC10 = scale(pctChangeN(closes, 10), 100)

	tenkanHigh := rollMax(closes, e.tenkanPeriod)
	tenkanLow := rollMin(closes, e.tenkanPeriod)
	kijunHigh := rollMax(closes, e.kijunPeriod)
	kijunLow := rollMin(closes, e.kijunPeriod)
	f.Tenkan = make([]float64, n)
	f.Kijun = make([]float64, n)
	for i := 0; i < n; i++ {
		f.Tenkan[i] = (tenkanHigh[i] + tenkanLow[i]) / 2
		f.Kijun[i] = (kijunHigh[i] + kijunLow[i]) / 2
	}

	stochLow := rollMin(closes, e.stochPeriod)
	stochHigh := rollMax(closes, e.stochPeriod)
	f.StochK = make([]float64, n)
	for i := 0; i < n; i++ {
		span := stochHigh[i] - stochLow[i]
		if span == 0 {
			span = epsilon
		}
		f.StochK[i] = 100 * (closes[i] - stochLow[i]) / span
	}
	f.StochD = rollMean(f.StochK, e.stochSmooth)

	f.PriceDiff = diff(closes)

	return f, nil
}

// oscillator computes the RSI-style momentum oscillator from price deltas
// using an exponentially weighted mean of gains and losses. A zero loss mean
// is substituted with the smallest positive increment to avoid division by
// zero, per the indicator contract.
func (e *Engine) oscillator(delta []float64, alpha float64) []float64 {
	n := len(delta)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i, d := range delta {
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}
	gainMean := ewm(gains, alpha)
	lossMean := ewm(losses, alpha)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		loss := lossMean[i]
		if loss == 0 {
			loss = epsilon
		}
		rs := gainMean[i] / loss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func deltaAt(delta []float64, i int) float64 {
	if math.IsNaN(delta[i]) {
		return 0
	}
	return delta[i]
}

func scale(x []float64, by float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * by
	}
	return out
}
