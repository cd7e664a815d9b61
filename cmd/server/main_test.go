package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the caller's environment
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MCP_MODE", "MCP_PROFILE", "LOG_LEVEL", "PORT", "CORS_ALLOWED_ORIGINS",
		"EXTERNAL_API_BASE_URL", "EXTERNAL_API_TIMEOUT", "PAGING_LIMIT", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

// parsedCmd returns a root command with args parsed but not executed
func parsedCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadConfig(parsedCmd(t))
	require.NoError(t, err)

	assert.Equal(t, "stdio", cfg.Mode)
	assert.Equal(t, "all", cfg.Profile)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 20, cfg.PagingLimit)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_MODE", "stdio")
	t.Setenv("MCP_PROFILE", "core")
	t.Setenv("EXTERNAL_API_BASE_URL", "http://env.example.com")

	cfg, err := loadConfig(parsedCmd(t,
		"--mode", "http",
		"--profile", "workouts",
		"--log-level", "debug",
		"--port", "9090",
		"--api-base-url", "https://flag.example.com/",
		"--api-timeout", "2.5",
	))
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Mode)
	assert.Equal(t, "workouts", cfg.Profile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://flag.example.com/", cfg.APIBaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.APITimeout)
}

func TestLoadConfig_EnvUsedWhenFlagUnset(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_PROFILE", "heart_rate")
	t.Setenv("EXTERNAL_API_TIMEOUT", "45s")

	cfg, err := loadConfig(parsedCmd(t, "--log-level", "warn"))
	require.NoError(t, err)

	assert.Equal(t, "heart_rate", cfg.Profile)
	assert.Equal(t, 45*time.Second, cfg.APITimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{name: "invalid mode flag", args: []string{"--mode", "sse"}, wantErr: "invalid mode"},
		{name: "invalid profile flag", args: []string{"--profile", "sleep"}, wantErr: "invalid profile"},
		{name: "invalid timeout flag", args: []string{"--api-timeout", "soon"}, wantErr: "--api-timeout"},
		{name: "zero timeout flag", args: []string{"--api-timeout", "0"}, wantErr: "timeout"},
		{name: "relative base url", args: []string{"--api-base-url", "localhost:8000"}, wantErr: "base URL"},
		{name: "invalid mode env", env: map[string]string{"MCP_MODE": "grpc"}, wantErr: "MCP_MODE"},
		{name: "malformed port env", env: map[string]string{"PORT": "abc"}, wantErr: "invalid PORT"},
		{name: "paging limit out of range", env: map[string]string{"PAGING_LIMIT": "500"}, wantErr: "paging limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig(parsedCmd(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRootCmd_InvalidConfigFailsFast(t *testing.T) {
	clearEnv(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--mode", "carrier-pigeon"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.0.0")
}
