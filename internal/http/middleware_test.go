package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refractionpoint/health-mcp-go/internal/config"
	"github.com/refractionpoint/health-mcp-go/internal/metrics"
	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// ===== Helper Functions =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHandler(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

func panicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}
}

func corsServer(origins ...string) *Server {
	return &Server{
		config: &config.Config{CORSAllowedOrigins: origins},
		logger: testLogger(),
	}
}

// ===== Panic Recovery Tests =====

func TestPanicRecovery_HandlesPanic(t *testing.T) {
	handler := PanicRecovery(testLogger())(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_server_error")
}

func TestPanicRecovery_NormalRequestPassesThrough(t *testing.T) {
	handler := PanicRecovery(testLogger())(testHandler(http.StatusOK, "success"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", w.Body.String())
}

func TestPanicRecovery_KeepsRequestIDHeader(t *testing.T) {
	handler := RequestID()(PanicRecovery(testLogger())(panicHandler()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

// ===== Security Headers Tests =====

func TestSecurityHeaders_AllHeadersPresent(t *testing.T) {
	handler := securityHeaders(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

// ===== CORS Tests =====

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := corsServer("https://app.example.com").corsMiddleware(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderMCPTools)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := corsServer("https://app.example.com").corsMiddleware(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	handler := corsServer().corsMiddleware(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	handler := corsServer("*").corsMiddleware(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Origin", "https://any.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://any.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	called := false
	handler := corsServer("*").corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.False(t, called, "preflight must not reach the handler")
}

// ===== Request ID Tests =====

func TestRequestID_GeneratesID(t *testing.T) {
	handler := RequestID()(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	handler := RequestID()(testHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "existing-id-123")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "existing-id-123", w.Header().Get(HeaderRequestID))
}

func TestRequestID_InContext(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = tools.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, w.Header().Get(HeaderRequestID), seen)
}

func TestRequestID_UniqueIDs(t *testing.T) {
	handler := RequestID()(testHandler(http.StatusOK, "ok"))

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		ids[w.Header().Get(HeaderRequestID)] = true
	}
	assert.Len(t, ids, 100)
}

// ===== Metrics Middleware Tests =====

func TestMetricsMiddleware_TracksStatusCodes(t *testing.T) {
	mgr := metrics.NewManager(metrics.Config{Enabled: true}, testLogger())

	ok := MetricsMiddleware(mgr)(testHandler(http.StatusOK, "ok"))
	failing := MetricsMiddleware(mgr)(testHandler(http.StatusInternalServerError, "error"))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/mcp", nil))

	w := httptest.NewRecorder()
	mgr.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `health_mcp_http_requests_total{code="200"} 2`)
	assert.Contains(t, body, `health_mcp_http_requests_total{code="500"} 1`)
}

func TestMetricsMiddleware_NilManager(t *testing.T) {
	handler := MetricsMiddleware(nil)(testHandler(http.StatusOK, "ok"))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

// ===== Request Logger Tests =====

func TestRequestLogger_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestID()(RequestLogger(logger)(testHandler(http.StatusTeapot, "short and stout")))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "path=/health")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "request_id=req-42")
}

// ===== Body Size Limit Tests =====

func readBodyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestBodySizeLimit_AllowsSmallBody(t *testing.T) {
	handler := corsServer().bodySizeLimitMiddleware(readBodyHandler())

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodySizeLimit_RejectsLargeBody(t *testing.T) {
	handler := corsServer().bodySizeLimitMiddleware(readBodyHandler())

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(make([]byte, maxBodySize+1)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// ===== Helper Function Tests =====

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "x-forwarded-for first hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"},
			want:    "203.0.113.1",
		},
		{
			name:    "x-real-ip",
			headers: map[string]string{"X-Real-IP": "203.0.113.2"},
			want:    "203.0.113.2",
		},
		{
			name:    "forwarded wins over real ip",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.3", "X-Real-IP": "203.0.113.4"},
			want:    "203.0.113.3",
		},
		{
			name: "remote addr fallback",
			want: "192.0.2.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestResponseWriter_CapturesStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rw.statusCode)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
