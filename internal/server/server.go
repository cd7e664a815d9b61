package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/refractionpoint/health-mcp-go/internal/config"
	"github.com/refractionpoint/health-mcp-go/internal/healthapi"
	httpserver "github.com/refractionpoint/health-mcp-go/internal/http"
	"github.com/refractionpoint/health-mcp-go/internal/metrics"
	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger on stderr at the given level.
// Stdout is reserved for the stdio transport.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// Server wraps the MCP server with our configuration
type Server struct {
	mcpServer      *server.MCPServer
	httpServer     *httpserver.Server
	config         *config.Config
	apiClient      *healthapi.Client
	metricsManager *metrics.Manager
	logger         *slog.Logger
}

// New creates a new MCP server instance
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = NewLogger(cfg.LogLevel)
	}

	apiClient, err := healthapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, healthapi.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create health API client: %w", err)
	}

	metricsManager := metrics.NewManager(metrics.Config{Enabled: cfg.MetricsEnabled}, logger)

	s := &Server{
		config:         cfg,
		apiClient:      apiClient,
		metricsManager: metricsManager,
		logger:         logger,
	}

	// Initialize based on mode
	switch cfg.Mode {
	case "stdio":
		s.mcpServer = server.NewMCPServer(
			httpserver.ServerName,
			httpserver.ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		)

		// Register tools for the selected profile
		if err := s.registerTools(); err != nil {
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}

	case "http":
		httpSrv, err := httpserver.New(cfg, logger, metricsManager, s.contextFunc)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP server: %w", err)
		}
		s.httpServer = httpSrv

	default:
		return nil, fmt.Errorf("unknown server mode: %s", cfg.Mode)
	}

	logger.Info("Health MCP server initialized",
		"profile", cfg.Profile,
		"mode", cfg.Mode,
		"api_base_url", apiClient.BaseURL(),
		"api_timeout", cfg.APITimeout,
		"paging_limit", cfg.PagingLimit,
		"metrics", metricsManager.Enabled())

	return s, nil
}

// registerTools registers all tools for the configured profile
func (s *Server) registerTools() error {
	if err := tools.AddToolsToServer(s.mcpServer, s.config.Profile); err != nil {
		return err
	}

	toolNames := tools.GetToolsForProfile(s.config.Profile)
	s.logger.Info("Registered tools", "count", len(toolNames), "tools", toolNames)

	return nil
}

// contextFunc injects what tool handlers need into every request context
func (s *Server) contextFunc(ctx context.Context) context.Context {
	ctx = tools.WithAPIClient(ctx, s.apiClient)
	ctx = tools.WithLogger(ctx, s.logger)
	ctx = metrics.WithManager(ctx, s.metricsManager)
	return ctx
}

// Serve starts the server in the configured mode and blocks until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting server", "mode", s.config.Mode)

	switch s.config.Mode {
	case "stdio":
		return s.serveStdio(ctx, os.Stdin, os.Stdout)
	case "http":
		s.logger.Info("Serving via HTTP", "port", s.config.HTTPPort)
		return s.httpServer.Serve(ctx)
	default:
		return fmt.Errorf("unknown server mode: %s", s.config.Mode)
	}
}

// GetLogger returns the logger
func (s *Server) GetLogger() *slog.Logger {
	return s.logger
}

// Close gracefully shuts down the server and releases resources
func (s *Server) Close() error {
	s.logger.Info("Shutting down server, cleaning up resources...")

	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			s.logger.Error("Failed to close HTTP server", "error", err)
			return err
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
