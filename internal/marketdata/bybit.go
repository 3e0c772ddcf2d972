package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/pkg/types"
)

// BybitConfig configures the Bybit market data provider. Public market
// endpoints work without credentials.
type BybitConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string // "spot", "linear", "inverse"; defaults to "spot"
}

// BybitProvider fetches candles from the Bybit v5 market API.
type BybitProvider struct {
	httpClient *bybit_api.Client
	category   string
	interval   string
}

// NewBybitProvider creates a provider for the 5-minute kline interval.
func NewBybitProvider(cfg BybitConfig) *BybitProvider {
	baseURL := bybit_api.MAINNET
	if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	}
	category := cfg.Category
	if category == "" {
		category = "spot"
	}
	return &BybitProvider{
		httpClient: bybit_api.NewBybitHttpClient(cfg.APIKey, cfg.APISecret, bybit_api.WithBaseURL(baseURL)),
		category:   category,
		interval:   "5",
	}
}

// ResolveInstrument looks the symbol up via the instruments-info endpoint.
func (p *BybitProvider) ResolveInstrument(ctx context.Context, symbol string) (Instrument, error) {
	params := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
	}
	result, err := p.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return Instrument{}, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "resolve_instrument")
	}
	return p.parseInstrumentResponse(result, symbol)
}

func (p *BybitProvider) parseInstrumentResponse(response interface{}, symbol string) (Instrument, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return Instrument{}, apperrors.New(apperrors.CategoryNetwork, "marketdata", "resolve_instrument", "invalid response type")
	}
	if serverResp.RetCode != 0 {
		return Instrument{}, apperrors.New(apperrors.CategoryNetwork, "marketdata", "resolve_instrument",
			fmt.Sprintf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode))
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return Instrument{}, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "resolve_instrument")
	}
	var infoResult struct {
		Category string       `json:"category"`
		List     []Instrument `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &infoResult); err != nil {
		return Instrument{}, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "resolve_instrument")
	}
	if len(infoResult.List) == 0 {
		return Instrument{}, apperrors.NewInstrumentNotFound("marketdata", symbol)
	}
	return infoResult.List[0], nil
}

// Candles fetches the most recent klines and returns them oldest-first.
func (p *BybitProvider) Candles(ctx context.Context, symbol string, limit int) (types.Series, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	params := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
		"interval": p.interval,
		"limit":    limit,
	}
	result, err := p.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "get_candles")
	}
	return p.parseKlineResponse(result)
}

func (p *BybitProvider) parseKlineResponse(response interface{}) (types.Series, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryNetwork, "marketdata", "get_candles", "invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, apperrors.New(apperrors.CategoryNetwork, "marketdata", "get_candles",
			fmt.Sprintf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode))
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "get_candles")
	}
	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryNetwork, "marketdata", "get_candles")
	}

	// Bybit kline format: [startTime, open, high, low, close, volume, turnover],
	// newest first.
	series := make(types.Series, 0, len(klineResult.List))
	for _, item := range klineResult.List {
		if len(item) < 7 {
			continue
		}
		series = append(series, types.Candle{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	return series, nil
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
