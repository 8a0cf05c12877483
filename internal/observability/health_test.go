package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) (bool, error)   { return true, nil }
func unhealthy(context.Context) (bool, error) { return false, errors.New("backend unreachable") }

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheckHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, serviceName, status.Service)
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := ReadinessHandler(map[string]HealthCheckFunc{
		"llm":     healthy,
		"backend": healthy,
		"skipped": nil,
	})
	handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Len(t, status.Dependencies, 2)
	assert.Equal(t, "healthy", status.Dependencies["backend"].Status)
}

func TestReadinessHandler_OneUnhealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := ReadinessHandler(map[string]HealthCheckFunc{
		"llm":     healthy,
		"backend": unhealthy,
	})
	handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "unhealthy", status.Dependencies["backend"].Status)
	assert.Equal(t, "backend unreachable", status.Dependencies["backend"].Message)
	assert.Equal(t, "healthy", status.Dependencies["llm"].Status)
}

func TestCorrelationIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chatbot", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromRequest(req))

	generated := CorrelationIDFromRequest(httptest.NewRequest(http.MethodPost, "/api/chatbot", nil))
	assert.Len(t, generated, 36)
}

func TestLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	l := LoggerFromContext(context.Background())
	require.NotNil(t, l)

	scoped := WithCorrelationID("req-1")
	ctx := ContextWithLogger(context.Background(), scoped)
	assert.Equal(t, scoped.GetLevel(), LoggerFromContext(ctx).GetLevel())
}

func TestCorrelationIDContext(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))

	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
}
