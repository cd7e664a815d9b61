package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewManager_Disabled(t *testing.T) {
	mgr := NewManager(Config{Enabled: false}, testLogger())
	require.NotNil(t, mgr)
	assert.False(t, mgr.Enabled())

	// Recording on a disabled manager is a no-op
	mgr.RecordToolCall("get_workouts", "success", time.Millisecond)
	mgr.RecordUpstreamRequest("workouts", "success", time.Millisecond)
	mgr.RecordHTTPRequest(http.StatusOK)

	rec := httptest.NewRecorder()
	mgr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilManager(t *testing.T) {
	var mgr *Manager
	assert.False(t, mgr.Enabled())
	assert.Nil(t, mgr.Registry())

	assert.NotPanics(t, func() {
		mgr.RecordToolCall("get_workouts", "success", time.Millisecond)
		mgr.RecordUpstreamRequest("workouts", "error", time.Millisecond)
		mgr.RecordHTTPRequest(http.StatusInternalServerError)
	})
}

func TestManager_RecordToolCall(t *testing.T) {
	mgr := NewManager(Config{Enabled: true}, testLogger())
	require.True(t, mgr.Enabled())

	mgr.RecordToolCall("get_workouts", "success", 10*time.Millisecond)
	mgr.RecordToolCall("get_workouts", "success", 20*time.Millisecond)
	mgr.RecordToolCall("get_heart_rate", "rejected", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(mgr.toolCalls.WithLabelValues("get_workouts", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mgr.toolCalls.WithLabelValues("get_heart_rate", "rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(mgr.toolCalls.WithLabelValues("get_heart_rate", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(mgr.toolDuration))
}

func TestManager_RecordUpstreamRequest(t *testing.T) {
	mgr := NewManager(Config{Enabled: true}, testLogger())

	mgr.RecordUpstreamRequest("heart-rate", "status_error", 5*time.Millisecond)
	mgr.RecordUpstreamRequest("heart-rate", "unreachable", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(mgr.upstreamRequests.WithLabelValues("heart-rate", "status_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mgr.upstreamRequests.WithLabelValues("heart-rate", "unreachable")))
	assert.Equal(t, 1, testutil.CollectAndCount(mgr.upstreamDuration))
}

func TestManager_Handler(t *testing.T) {
	mgr := NewManager(Config{Enabled: true}, testLogger())
	mgr.RecordToolCall("hello", "success", time.Millisecond)
	mgr.RecordHTTPRequest(http.StatusOK)

	rec := httptest.NewRecorder()
	mgr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `health_mcp_tools_calls_total{outcome="success",tool="hello"} 1`)
	assert.Contains(t, body, `health_mcp_http_requests_total{code="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestManager_SeparateRegistries(t *testing.T) {
	// Two managers must not collide on registration
	a := NewManager(Config{Enabled: true}, testLogger())
	b := NewManager(Config{Enabled: true}, testLogger())

	a.RecordToolCall("hello", "success", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.toolCalls.WithLabelValues("hello", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.toolCalls.WithLabelValues("hello", "success")))
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetManager(ctx))

	mgr := NewManager(Config{Enabled: true}, testLogger())
	ctx = WithManager(ctx, mgr)
	assert.Same(t, mgr, GetManager(ctx))
}
