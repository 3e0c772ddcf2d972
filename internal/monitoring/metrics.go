package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prismtrade_analyses_total",
			Help: "Total number of analysis runs",
		},
		[]string{"symbol", "outcome"},
	)

	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prismtrade_analysis_duration_seconds",
			Help:    "Duration of analysis runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	recommendationConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prismtrade_recommendation_confidence",
			Help: "Confidence level of the latest recommendation",
		},
		[]string{"symbol"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prismtrade_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(analysesTotal)
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(recommendationConfidence)
	prometheus.MustRegister(errorsTotal)
}

// Metrics is a handle over the process-wide instrumentation. A nil handle
// disables recording at the call sites.
type Metrics struct{}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveAnalysis records the outcome and duration of one analysis run.
func (m *Metrics) ObserveAnalysis(symbol string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		errorsTotal.WithLabelValues(string(apperrors.CategoryOf(err))).Inc()
	}
	analysesTotal.WithLabelValues(symbol, outcome).Inc()
	analysisDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

// SetConfidence records the confidence of the latest recommendation.
func (m *Metrics) SetConfidence(symbol string, confidence int) {
	recommendationConfidence.WithLabelValues(symbol).Set(float64(confidence))
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
