package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/refractionpoint/health-mcp-go/internal/config"
	httpserver "github.com/refractionpoint/health-mcp-go/internal/http"
	"github.com/refractionpoint/health-mcp-go/internal/server"

	// Import tool packages to trigger init() registration
	_ "github.com/refractionpoint/health-mcp-go/internal/tools/core"
	_ "github.com/refractionpoint/health-mcp-go/internal/tools/heartrate"
	_ "github.com/refractionpoint/health-mcp-go/internal/tools/workouts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health-mcp",
		Short: "MCP server exposing workout and heart rate data",
		Long: "health-mcp serves the get_workouts and get_heart_rate tools over MCP (stdio or HTTP),\n" +
			"proxying each call to the external health data REST API.",
		Version: httpserver.ServerVersion,
		// SilenceUsage prevents printing usage on runtime errors
		SilenceUsage: true,
		RunE:         runServer,
	}

	// Flags override the corresponding environment variables when set
	cmd.Flags().String("mode", "", "Transport: stdio or http (env MCP_MODE)")
	cmd.Flags().String("profile", "", "Tool profile: core, workouts, heart_rate or all (env MCP_PROFILE)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn or error (env LOG_LEVEL)")
	cmd.Flags().Int("port", 0, "HTTP listen port in http mode (env PORT)")
	cmd.Flags().String("api-base-url", "", "Base URL of the health data API (env EXTERNAL_API_BASE_URL)")
	cmd.Flags().String("api-timeout", "", "Upstream request timeout, e.g. 30s or 2.5 (env EXTERNAL_API_TIMEOUT)")

	return cmd
}

// loadConfig reads the environment, applies explicitly set flags and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("profile") {
		cfg.Profile, _ = flags.GetString("profile")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("port") {
		cfg.HTTPPort, _ = flags.GetInt("port")
	}
	if flags.Changed("api-base-url") {
		cfg.APIBaseURL, _ = flags.GetString("api-base-url")
	}
	if flags.Changed("api-timeout") {
		raw, _ := flags.GetString("api-timeout")
		timeout, err := config.ParseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --api-timeout: %w", err)
		}
		cfg.APITimeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := server.NewLogger(cfg.LogLevel)
	logger.Info("Starting health MCP server",
		"mode", cfg.Mode,
		"profile", cfg.Profile)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		return err
	}

	// Ensure cleanup happens on exit
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error during server cleanup", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}
