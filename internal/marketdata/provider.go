package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/indicators"
	"github.com/prismtrade/prismtrade/pkg/types"
)

// MaxSeriesAge is how stale the newest candle may be before the series is
// rejected.
const MaxSeriesAge = 30 * time.Minute

// Instrument describes a tradable symbol as reported by the data source.
type Instrument struct {
	Symbol    string `json:"symbol"`
	BaseCoin  string `json:"baseCoin"`
	QuoteCoin string `json:"quoteCoin"`
	Status    string `json:"status"`
}

// Provider supplies candle series and instrument metadata.
type Provider interface {
	// ResolveInstrument confirms the symbol exists and returns its metadata.
	ResolveInstrument(ctx context.Context, symbol string) (Instrument, error)
	// Candles returns up to limit most recent 5-minute candles in
	// chronological order.
	Candles(ctx context.Context, symbol string, limit int) (types.Series, error)
}

// ValidateSeries checks that a series is usable for analysis: enough
// samples, not stale, and no timestamps from the future.
func ValidateSeries(series types.Series, now time.Time) error {
	if len(series) < indicators.MinSamples {
		return apperrors.NewDataInsufficient("marketdata", "validate",
			fmt.Sprintf("need at least %d candles, got %d", indicators.MinSamples, len(series)))
	}
	last := series.Last().Timestamp
	if last.After(now) {
		return apperrors.NewStaleData("marketdata", "validate",
			fmt.Sprintf("newest candle timestamp %s is in the future", last.Format(time.RFC3339)))
	}
	if now.Sub(last) > MaxSeriesAge {
		return apperrors.NewStaleData("marketdata", "validate",
			fmt.Sprintf("newest candle is %s old, limit is %s", now.Sub(last).Round(time.Second), MaxSeriesAge))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			return apperrors.NewStaleData("marketdata", "validate",
				fmt.Sprintf("timestamps not strictly increasing at index %d", i))
		}
	}
	return nil
}
