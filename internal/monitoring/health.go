package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks the outcome of recent analysis runs for the health
// endpoint.
type HealthChecker struct {
	mu           sync.RWMutex
	startTime    time.Time
	lastAnalysis time.Time
	lastSymbol   string
	lastError    string
}

type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LastAnalysis time.Time `json:"last_analysis,omitempty"`
	LastSymbol   string    `json:"last_symbol,omitempty"`
	Uptime       string    `json:"uptime"`
	LastError    string    `json:"last_error,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{startTime: time.Now()}
}

// RecordAnalysis notes the latest run. A nil error clears any prior failure.
func (h *HealthChecker) RecordAnalysis(symbol string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastAnalysis = time.Now()
	h.lastSymbol = symbol
	if err != nil {
		h.lastError = err.Error()
	} else {
		h.lastError = ""
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.lastError != "" {
		status = "degraded"
	}

	health := HealthStatus{
		Status:       status,
		Timestamp:    time.Now(),
		LastAnalysis: h.lastAnalysis,
		LastSymbol:   h.lastSymbol,
		Uptime:       time.Since(h.startTime).String(),
		LastError:    h.lastError,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
