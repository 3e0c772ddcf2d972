package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismtrade/prismtrade/internal/analysis"
	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/config"
	"github.com/prismtrade/prismtrade/internal/marketdata"
	"github.com/prismtrade/prismtrade/pkg/types"
)

type failingProvider struct {
	err error
}

func (p *failingProvider) ResolveInstrument(_ context.Context, _ string) (marketdata.Instrument, error) {
	return marketdata.Instrument{}, p.err
}

func (p *failingProvider) Candles(_ context.Context, _ string, _ int) (types.Series, error) {
	return nil, p.err
}

func testSeries(end time.Time, n int) types.Series {
	series := make(types.Series, n)
	for i := 0; i < n; i++ {
		series[i] = types.Candle{
			Timestamp: end.Add(-time.Duration(n-1-i) * 5 * time.Minute),
			Close:     100 + 0.5*float64(i) + 0.3*math.Sin(float64(i)/3),
			Volume:    1000,
		}
	}
	return series
}

func newTestServer(provider marketdata.Provider, clock func() time.Time) *Server {
	svc := analysis.NewService(provider, nil, nil, zerolog.Nop())
	if clock != nil {
		svc = svc.WithClock(clock)
	}
	return New(config.ServerConfig{Addr: ":0"}, svc, zerolog.Nop())
}

func doAnalyze(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze_OK(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := &marketdata.StaticProvider{Series: testSeries(end, 120)}
	s := newTestServer(provider, func() time.Time { return end.Add(time.Minute) })

	rec := doAnalyze(s, `{"symbol": "btcusdt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "BTCUSDT", result.Symbol)
	assert.NotEmpty(t, result.Recommendation)
	assert.Len(t, result.Predictions, 3)
}

func TestHandleAnalyze_FormEncoded(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := &marketdata.StaticProvider{Series: testSeries(end, 120)}
	s := newTestServer(provider, func() time.Time { return end.Add(time.Minute) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("symbol=btcusdt"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "BTCUSDT", result.Symbol)
}

func TestHandleAnalyze_BadJSON(t *testing.T) {
	s := newTestServer(&failingProvider{}, nil)
	rec := doAnalyze(s, `{"symbol": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_MissingSymbol(t *testing.T) {
	s := newTestServer(&failingProvider{}, nil)
	rec := doAnalyze(s, `{"symbol": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"instrument not found", apperrors.NewInstrumentNotFound("marketdata", "XYZUSDT"), http.StatusNotFound},
		{"data insufficient", apperrors.NewDataInsufficient("marketdata", "validate", "too few"), http.StatusUnprocessableEntity},
		{"stale data", apperrors.NewStaleData("marketdata", "validate", "old"), http.StatusServiceUnavailable},
		{"network", apperrors.New(apperrors.CategoryNetwork, "marketdata", "klines", "down"), http.StatusBadGateway},
		{"storage", apperrors.New(apperrors.CategoryStorage, "history", "save", "disk"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&failingProvider{err: tc.err}, nil)
			rec := doAnalyze(s, `{"symbol": "XYZUSDT"}`)
			assert.Equal(t, tc.status, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, string(apperrors.CategoryOf(tc.err)), resp.Category)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&failingProvider{err: apperrors.New(apperrors.CategoryNetwork, "marketdata", "klines", "down")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status["status"])

	// A failed analysis degrades the reported health.
	doAnalyze(s, `{"symbol": "XYZUSDT"}`)
	rec = httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status["status"])
}

func TestAnalyzeRejectsGet(t *testing.T) {
	s := newTestServer(&failingProvider{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
