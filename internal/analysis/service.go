package analysis

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/forecast"
	"github.com/prismtrade/prismtrade/internal/history"
	"github.com/prismtrade/prismtrade/internal/indicators"
	"github.com/prismtrade/prismtrade/internal/marketdata"
	"github.com/prismtrade/prismtrade/internal/marketstate"
	"github.com/prismtrade/prismtrade/internal/monitoring"
	"github.com/prismtrade/prismtrade/internal/recommend"
)

// defaultCandleLimit covers 24 hours at the 5-minute cadence.
const defaultCandleLimit = 288

// Service runs the full analysis pipeline for a symbol: fetch and validate
// candles, compute indicators, classify the market state, forecast, score a
// recommendation and plan trade levels.
type Service struct {
	provider marketdata.Provider
	engine   *indicators.Engine
	analyzer *marketstate.Analyzer
	ensemble *forecast.Ensemble
	scorer   *recommend.Scorer
	planner  *recommend.Planner
	recorder *history.Recorder
	metrics  *monitoring.Metrics
	log      zerolog.Logger

	candleLimit int
	now         func() time.Time
}

// NewService wires the pipeline. recorder and metrics may be nil, in which
// case history persistence and instrumentation are skipped.
func NewService(provider marketdata.Provider, recorder *history.Recorder, metrics *monitoring.Metrics, log zerolog.Logger) *Service {
	return &Service{
		provider:    provider,
		engine:      indicators.NewEngine(),
		analyzer:    marketstate.NewAnalyzer(),
		ensemble:    forecast.NewEnsemble(log),
		scorer:      recommend.NewScorer(),
		planner:     recommend.NewPlanner(),
		recorder:    recorder,
		metrics:     metrics,
		log:         log.With().Str("component", "analysis").Logger(),
		candleLimit: defaultCandleLimit,
		now:         time.Now,
	}
}

// WithClock overrides the time source, used for offline input whose candles
// would otherwise fail the staleness check.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Analyze produces a Result for the symbol.
func (s *Service) Analyze(ctx context.Context, symbol string) (*Result, error) {
	started := s.now()
	result, err := s.analyze(ctx, symbol)
	if s.metrics != nil {
		s.metrics.ObserveAnalysis(symbol, time.Since(started), err)
		if result != nil {
			s.metrics.SetConfidence(result.Symbol, result.ConfidenceLevel)
		}
	}
	return result, err
}

func (s *Service) analyze(ctx context.Context, symbol string) (*Result, error) {
	instrument, err := s.provider.ResolveInstrument(ctx, symbol)
	if err != nil {
		return nil, err
	}

	series, err := s.provider.Candles(ctx, instrument.Symbol, s.candleLimit)
	if err != nil {
		return nil, err
	}
	if err := marketdata.ValidateSeries(series, s.now()); err != nil {
		return nil, err
	}

	prices := series.Closes()
	volumes := series.Volumes()
	times := series.Timestamps()

	frame, err := s.engine.Compute(prices, volumes)
	if err != nil {
		return nil, err
	}
	state, err := s.analyzer.Analyze(frame)
	if err != nil {
		return nil, err
	}

	n := frame.Len()
	ma5 := frame.PriceMA5[n-1]
	ma20 := frame.PriceMA20[n-1]
	uptrend := ma5 > ma20
	trend := TrendDown
	if uptrend {
		trend = TrendUp
	}

	// Too few fully formed rows is not fatal: the recommendation still
	// stands, only the forecasts are omitted.
	var forecastNote string
	out, err := s.ensemble.Predict(frame, uptrend, prices, times)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDataInsufficient) {
			return nil, err
		}
		s.log.Warn().Str("symbol", instrument.Symbol).Err(err).Msg("skipping forecasts")
		forecastNote = "not enough history for price forecasts"
		out = nil
	}

	currentPrice := prices[len(prices)-1]
	priceChange := (currentPrice - prices[0]) / prices[0] * 100
	momentum := indicators.CombinedMomentum(prices)

	rec := s.scorer.Score(recommend.Input{
		RSI:         frame.RSI[n-1],
		MACD:        frame.MACD[n-1],
		Signal:      frame.Signal[n-1],
		PriceChange: priceChange,
		Momentum:    momentum,
		Price:       currentPrice,
		MA5:         &ma5,
		MA20:        &ma20,
	}, state)

	// The annualized rolling volatility needs a full window of returns; with
	// a bare-minimum series it is still undefined and the window percent
	// change stands in.
	var observedVolatility *float64
	volatility := math.Abs(priceChange)
	if v := frame.Volatility[n-1]; !math.IsNaN(v) {
		observedVolatility = &v
		volatility = v
	}
	levels := s.planner.PlanLevels(currentPrice, state, observedVolatility, priceChange)
	confidence := recommend.Confidence(rec.Reasons, state, priceChange, volatility)

	result := &Result{
		Symbol:          instrument.Symbol,
		CurrentPrice:    currentPrice,
		MA5:             ma5,
		MA20:            ma20,
		Trend:           trend,
		PriceChange:     priceChange,
		Volatility:      volatility,
		Momentum:        momentum,
		RSI:             frame.RSI[n-1],
		MACD:            frame.MACD[n-1],
		SignalLine:      frame.Signal[n-1],
		Recommendation:  rec.Signal,
		Score:           rec.Score,
		Reasons:         rec.Reasons,
		EntryExitPrices: levels,
		ForecastNote:    forecastNote,
		MarketState:     state,
		ConfidenceLevel: confidence,
		GeneratedAt:     s.now(),
	}
	if out != nil {
		result.Predictions = make(map[string]Forecast, len(out.Horizons))
		for horizon, fc := range out.Horizons {
			result.Predictions[strconv.Itoa(horizon)] = Forecast{
				Price:      fc.Price,
				Change:     fc.ChangePct,
				Confidence: fc.Confidence,
				Times:      fc.Times,
			}
		}
	}

	if s.recorder != nil {
		snap := history.Snapshot{
			Symbol:          result.Symbol,
			Timestamp:       result.GeneratedAt,
			CurrentPrice:    result.CurrentPrice,
			Volatility:      result.Volatility,
			Recommendation:  result.Recommendation,
			ConfidenceLevel: result.ConfidenceLevel,
			Predictions:     make(map[string]history.ForecastPoint, len(result.Predictions)),
		}
		for horizon, fc := range result.Predictions {
			snap.Predictions[horizon] = history.ForecastPoint{Price: fc.Price, Change: fc.Change}
		}
		if err := s.recorder.Save(snap); err != nil {
			s.log.Error().Str("symbol", instrument.Symbol).Err(err).Msg("failed to persist prediction history")
		}
	}

	s.log.Info().
		Str("symbol", instrument.Symbol).
		Str("recommendation", rec.Signal).
		Float64("score", rec.Score).
		Int("confidence", confidence).
		Msg("analysis complete")
	return result, nil
}
