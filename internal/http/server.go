package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/refractionpoint/health-mcp-go/internal/config"
	"github.com/refractionpoint/health-mcp-go/internal/metrics"
	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

const (
	// HeaderMCPTools is the HTTP header for specifying a CSV list of tools
	HeaderMCPTools = "X-MCP-Tools"
)

// ContextFunc decorates a request context with the dependencies tool handlers need
type ContextFunc func(ctx context.Context) context.Context

// Server is the MCP JSON-RPC over HTTP transport
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	mux         *http.ServeMux
	server      *http.Server
	metrics     *metrics.Manager
	contextFunc ContextFunc
	profile     string
}

// New creates a new HTTP server instance using standard library
func New(cfg *config.Config, logger *slog.Logger, metricsManager *metrics.Manager, contextFunc ContextFunc) (*Server, error) {
	if !tools.IsValidProfile(cfg.Profile) {
		return nil, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	if contextFunc == nil {
		contextFunc = func(ctx context.Context) context.Context { return ctx }
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		mux:         http.NewServeMux(),
		metrics:     metricsManager,
		contextFunc: contextFunc,
		profile:     cfg.Profile,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           s.Handler(),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second, // Upstream call plus encoding
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	logger.Info("HTTP server initialized", "port", cfg.HTTPPort, "profile", cfg.Profile)

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.mux)
}

// getActiveProfile determines the active profile for a request.
// A configured profile other than "all" always wins; otherwise the URL path
// (/mcp/{profile}) may narrow the tool set.
func (s *Server) getActiveProfile(r *http.Request) string {
	if s.profile != "" && s.profile != "all" {
		return s.profile
	}

	path := r.URL.Path
	if path == "/" || path == "/mcp" {
		return "all"
	}

	profile := strings.TrimPrefix(path, "/mcp/")
	if tools.IsValidProfile(profile) {
		return profile
	}

	s.logger.Warn("Invalid profile in URL path, defaulting to 'all'", "path", path, "profile", profile)
	return "all"
}

// parseToolsFromHeader extracts and parses the X-MCP-Tools header.
// Returns nil if the header is absent or empty after parsing.
func (s *Server) parseToolsFromHeader(r *http.Request) []string {
	headerValue := r.Header.Get(HeaderMCPTools)
	if headerValue == "" {
		return nil
	}

	var toolsList []string
	for _, part := range strings.Split(headerValue, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			toolsList = append(toolsList, trimmed)
		}
	}
	return toolsList
}

// getToolsForRequest determines which tools are exposed to this request
func (s *Server) getToolsForRequest(r *http.Request) ([]string, error) {
	profile := s.getActiveProfile(r)

	// X-MCP-Tools narrows the "all" profile only
	if profile == "all" {
		if headerTools := s.parseToolsFromHeader(r); headerTools != nil {
			if err := tools.ValidateToolNames(headerTools); err != nil {
				return nil, fmt.Errorf("invalid tools in %s header: %w", HeaderMCPTools, err)
			}
			s.logger.Debug("Using tools from header", "count", len(headerTools), "tools", headerTools)
			return headerTools, nil
		}
	}

	return tools.GetToolsForProfile(profile), nil
}

// Serve starts the HTTP server and blocks until ctx is cancelled or the listener fails
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", "port", s.config.HTTPPort)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close releases the listener if Serve is still running
func (s *Server) Close() error {
	s.logger.Info("Closing HTTP server resources...")
	if err := s.server.Close(); err != nil {
		return fmt.Errorf("failed to close HTTP server: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response using ResponseWriter
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	rw := NewResponseWriter(w, s.logger)
	rw.WriteJSON(status, data)
}
