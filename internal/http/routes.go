package http

import (
	"net/http"
	"time"

	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	// Root endpoint - handles MCP requests when URL is configured without /mcp suffix
	s.mux.HandleFunc("/", s.handleRootRequest)

	// Health check endpoints
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)

	// Prometheus scrape endpoint
	if s.metrics.Enabled() {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}

	// MCP JSON-RPC endpoint
	s.mux.HandleFunc("/mcp", s.handleMCPRequest)

	// Profile-specific endpoints narrow the tool set when the server runs the "all" profile
	s.mux.HandleFunc("/mcp/all", s.handleMCPRequest)
	for profile := range tools.ProfileDefinitions {
		s.mux.HandleFunc("/mcp/"+profile, s.handleMCPRequest)
	}
}

// Health check handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	checks := map[string]bool{
		"tools": false,
	}

	// Every tool of the configured profile must be registered
	if toolNames := tools.GetToolsForProfile(s.profile); len(toolNames) > 0 {
		checks["tools"] = tools.ValidateToolNames(toolNames) == nil
	}

	for _, ready := range checks {
		if !ready {
			status = "not_ready"
			break
		}
	}

	statusCode := http.StatusOK
	if status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	s.writeJSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRootRequest handles requests to the root path "/"
func (s *Server) handleRootRequest(w http.ResponseWriter, r *http.Request) {
	// Only handle the exact root path, not sub-paths
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleMCPRequest(w, r)
	case http.MethodGet:
		endpoints := map[string]string{
			"mcp":    "/mcp",
			"health": "/health",
			"ready":  "/ready",
		}
		if s.metrics.Enabled() {
			endpoints["metrics"] = "/metrics"
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"type":      ServerName,
			"version":   ServerVersion,
			"status":    "ok",
			"profile":   s.profile,
			"endpoints": endpoints,
		})
	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": "method not allowed",
		})
	}
}
