package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/refractionpoint/health-mcp-go/internal/metrics"
)

// ToolHandler is the function signature for MCP tool handlers
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// ToolRegistration holds a tool's metadata and handler
type ToolRegistration struct {
	Name        string
	Description string
	Handler     ToolHandler
	Schema      mcp.Tool
	Profile     string
}

// Global tool registry. Populated from init() and read-only afterwards.
var registry = make(map[string]*ToolRegistration)

// ProfileDefinitions maps profile names to the tools they expose.
// Overridden by configs/profiles.yaml when that file is found.
var ProfileDefinitions = map[string][]string{
	"core": {
		"hello",
	},
	"workouts": {
		"get_workouts",
	},
	"heart_rate": {
		"get_heart_rate",
	},
}

// RegisterTool adds a tool to the registry
func RegisterTool(reg *ToolRegistration) {
	registry[reg.Name] = reg
}

// GetTool retrieves a tool from the registry
func GetTool(name string) (*ToolRegistration, bool) {
	tool, ok := registry[name]
	return tool, ok
}

// GetAllRegisteredToolNames returns the names of every registered tool, sorted
func GetAllRegisteredToolNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetToolsForProfile returns all tool names for a given profile
func GetToolsForProfile(profile string) []string {
	if profile == "all" {
		allTools := make(map[string]bool)
		for _, tools := range ProfileDefinitions {
			for _, tool := range tools {
				allTools[tool] = true
			}
		}
		result := make([]string, 0, len(allTools))
		for tool := range allTools {
			result = append(result, tool)
		}
		sort.Strings(result)
		return result
	}

	tools, ok := ProfileDefinitions[profile]
	if !ok {
		return []string{}
	}
	return tools
}

// IsValidProfile reports whether profile is "all" or a defined profile
func IsValidProfile(profile string) bool {
	if profile == "all" {
		return true
	}
	_, ok := ProfileDefinitions[profile]
	return ok
}

// ValidateToolNames checks that every name refers to a registered tool
func ValidateToolNames(names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := registry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown tool(s): %s", strings.Join(unknown, ", "))
	}
	return nil
}

// GetUnknownParameters returns argument names not declared in the tool's input schema, sorted
func GetUnknownParameters(schema mcp.Tool, args map[string]interface{}) []string {
	var unknown []string
	for name := range args {
		if _, ok := schema.InputSchema.Properties[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// AddToolsToServer adds all tools for a profile to an MCP server
func AddToolsToServer(s *server.MCPServer, profile string) error {
	if !IsValidProfile(profile) {
		return fmt.Errorf("unknown profile: %s", profile)
	}

	for _, name := range GetToolsForProfile(profile) {
		reg, ok := GetTool(name)
		if !ok {
			// Listed in a profile but not implemented
			continue
		}
		s.AddTool(reg.Schema, wrapHandler(reg))
	}

	return nil
}

// wrapHandler converts our ToolHandler to mcp-go's expected signature
func wrapHandler(reg *ToolRegistration) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return CallTool(ctx, reg.Name, request.GetArguments())
	}
}

// CallTool looks up a tool by name and invokes its handler, logging and recording the call.
// Unknown tools produce an error result rather than a Go error.
func CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	reg, ok := GetTool(name)
	if !ok {
		return ErrorResultf("tool %q not found", name), nil
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	logger := Logger(ctx)
	logger.Debug("Tool call started", "request_id", requestID, "tool", name)

	start := time.Now()
	result, err := reg.Handler(ctx, args)
	duration := time.Since(start)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
		logger.Error("Tool call failed", "request_id", requestID, "tool", name,
			"duration_ms", duration.Milliseconds(), "error", err)
	case result != nil && result.IsError:
		outcome = "rejected"
		logger.Info("Tool call rejected", "request_id", requestID, "tool", name,
			"duration_ms", duration.Milliseconds())
	default:
		logger.Info("Tool call completed", "request_id", requestID, "tool", name,
			"duration_ms", duration.Milliseconds())
	}
	metrics.GetManager(ctx).RecordToolCall(name, outcome, duration)

	return result, err
}

// Logger returns the logger stored in ctx, or slog.Default()
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// ToJSON converts a value to JSON string without HTML escaping
func ToJSON(v interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %v\"}", err)
	}

	// encoder.Encode() adds a trailing newline
	return strings.TrimSuffix(buf.String(), "\n")
}

// SuccessResult creates a successful tool result
func SuccessResult(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(ToJSON(data))
}

// ErrorResult creates an error tool result
func ErrorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorResultf creates an error tool result with formatting
func ErrorResultf(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}
