package analysis

import (
	"time"

	"github.com/prismtrade/prismtrade/internal/marketstate"
	"github.com/prismtrade/prismtrade/internal/recommend"
)

// Trend labels for the moving-average cross.
const (
	TrendUp   = "UPTREND"
	TrendDown = "DOWNTREND"
)

// Forecast is a single-horizon projection in the result payload.
type Forecast struct {
	Price      float64     `json:"price"`
	Change     float64     `json:"change"`
	Confidence float64     `json:"confidence"`
	Times      []time.Time `json:"times"`
}

// Result is the full analysis payload for one symbol.
type Result struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`

	MA5   float64 `json:"ma5"`
	MA20  float64 `json:"ma20"`
	Trend string  `json:"trend"`

	PriceChange float64 `json:"price_change"`
	Volatility  float64 `json:"volatility"`
	Momentum    float64 `json:"momentum"`
	RSI         float64 `json:"rsi"`
	MACD        float64 `json:"macd"`
	SignalLine  float64 `json:"signal_line"`

	Recommendation  string                `json:"recommendation"`
	Score           float64               `json:"score"`
	Reasons         []string              `json:"reasons"`
	EntryExitPrices recommend.PriceLevels `json:"entry_exit_prices"`

	// Predictions is keyed by horizon in minutes ("15", "30", "60"). It is
	// empty when the series has too few fully formed rows to train on; the
	// rest of the analysis still stands.
	Predictions  map[string]Forecast `json:"predictions,omitempty"`
	ForecastNote string              `json:"forecast_note,omitempty"`

	MarketState     *marketstate.State `json:"market_state"`
	ConfidenceLevel int                `json:"confidence_level"`

	GeneratedAt time.Time `json:"generated_at"`
}
