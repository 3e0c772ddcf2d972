package monitoring

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentStatus(t *testing.T, h *HealthChecker) HealthStatus {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func TestHealthChecker_Transitions(t *testing.T) {
	h := NewHealthChecker()

	status := currentStatus(t, h)
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.LastError)

	h.RecordAnalysis("BTCUSDT", errors.New("exchange timeout"))
	status = currentStatus(t, h)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "BTCUSDT", status.LastSymbol)
	assert.Equal(t, "exchange timeout", status.LastError)

	// A later successful run clears the failure.
	h.RecordAnalysis("BTCUSDT", nil)
	status = currentStatus(t, h)
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.LastError)
}
