package indicators

import "math"

// Frame holds one derived column per indicator, one row per input candle.
// Leading rows are NaN wherever a rolling window has no full lookback.
type Frame struct {
	Close  []float64
	Volume []float64

	RSI     []float64
	RSIFast []float64

	MACD     []float64
	Signal   []float64
	Hist     []float64
	MACDDiff []float64

	SMA20      []float64
	Std20      []float64
	BandFactor []float64
	UpperBand  []float64
	LowerBand  []float64
	BandWidth  []float64
	PercentB   []float64

	VolumeSMA5   []float64
	VolumeSMA20  []float64
	VolumeChange []float64
	VolumeOsc    []float64
	ADLine       []float64

	PriceMA5      []float64
	PriceMA10     []float64
	PriceMA20     []float64
	PriceMA50     []float64
	MAConvergence []float64

	VolatilityShort []float64
	Volatility      []float64

	TrueRange []float64
	ATR       []float64

	Momentum []float64
	ROC5     []float64
	ROC10    []float64

	Tenkan []float64
	Kijun  []float64
	StochK []float64
	StochD []float64

	PriceDiff []float64
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return len(f.Close)
}

func (f *Frame) columns() [][]float64 {
	return [][]float64{
		f.Close, f.Volume,
		f.RSI, f.RSIFast,
		f.MACD, f.Signal, f.Hist, f.MACDDiff,
		f.SMA20, f.Std20, f.BandFactor, f.UpperBand, f.LowerBand, f.BandWidth, f.PercentB,
		f.VolumeSMA5, f.VolumeSMA20, f.VolumeChange, f.VolumeOsc, f.ADLine,
		f.PriceMA5, f.PriceMA10, f.PriceMA20, f.PriceMA50, f.MAConvergence,
		f.VolatilityShort, f.Volatility,
		f.TrueRange, f.ATR,
		f.Momentum, f.ROC5, f.ROC10,
		f.Tenkan, f.Kijun, f.StochK, f.StochD,
		f.PriceDiff,
	}
}

// ValidFrom returns the first row at which every column is defined.
// Returns Len() when no such row exists.
func (f *Frame) ValidFrom() int {
	from := 0
	for _, col := range f.columns() {
		first := len(col)
		for i, v := range col {
			if !math.IsNaN(v) {
				first = i
				break
			}
		}
		if first > from {
			from = first
		}
	}
	return from
}

// DropUndefined returns a view of the frame starting at the first row where
// every column has a defined value. Undefined values only occur in leading
// rows, so a single offset suffices.
func (f *Frame) DropUndefined() *Frame {
	from := f.ValidFrom()
	return &Frame{
		Close:  f.Close[from:],
		Volume: f.Volume[from:],

		RSI:     f.RSI[from:],
		RSIFast: f.RSIFast[from:],

		MACD:     f.MACD[from:],
		Signal:   f.Signal[from:],
		Hist:     f.Hist[from:],
		MACDDiff: f.MACDDiff[from:],

		SMA20:      f.SMA20[from:],
		Std20:      f.Std20[from:],
		BandFactor: f.BandFactor[from:],
		UpperBand:  f.UpperBand[from:],
		LowerBand:  f.LowerBand[from:],
		BandWidth:  f.BandWidth[from:],
		PercentB:   f.PercentB[from:],

		VolumeSMA5:   f.VolumeSMA5[from:],
		VolumeSMA20:  f.VolumeSMA20[from:],
		VolumeChange: f.VolumeChange[from:],
		VolumeOsc:    f.VolumeOsc[from:],
		ADLine:       f.ADLine[from:],

		PriceMA5:      f.PriceMA5[from:],
		PriceMA10:     f.PriceMA10[from:],
		PriceMA20:     f.PriceMA20[from:],
		PriceMA50:     f.PriceMA50[from:],
		MAConvergence: f.MAConvergence[from:],

		VolatilityShort: f.VolatilityShort[from:],
		Volatility:      f.Volatility[from:],

		TrueRange: f.TrueRange[from:],
		ATR:       f.ATR[from:],

		Momentum: f.Momentum[from:],
		ROC5:     f.ROC5[from:],
		ROC10:    f.ROC10[from:],

		Tenkan: f.Tenkan[from:],
		Kijun:  f.Kijun[from:],
		StochK: f.StochK[from:],
		StochD: f.StochD[from:],

		PriceDiff: f.PriceDiff[from:],
	}
}

// Last returns the last value of a column, which may be NaN.
func Last(col []float64) float64 {
	if len(col) == 0 {
		return math.NaN()
	}
	return col[len(col)-1]
}
