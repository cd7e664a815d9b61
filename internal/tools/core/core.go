// Package core provides connectivity tools that do not touch the health data API.
package core

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

func init() {
	RegisterHello()
}

// RegisterHello registers the hello tool
func RegisterHello() {
	schema := mcp.NewTool("hello",
		mcp.WithDescription("Test tool to verify MCP server connectivity"),
		mcp.WithString("name",
			mcp.Description("Name to greet (default: World)")),
	)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "hello",
		Description: "Test tool to verify MCP server connectivity",
		Profile:     "core",
		Schema:      schema,
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			r := tools.NewArgReader(args)
			r.RejectUnknown(schema)
			name := r.OptionalString("name")
			if err := r.Err(); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			greeting := "World"
			if name != nil && strings.TrimSpace(*name) != "" {
				greeting = strings.TrimSpace(*name)
			}

			result := map[string]interface{}{
				"status":  "ok",
				"message": "Hello, " + greeting + "!",
			}
			return tools.SuccessResult(result), nil
		},
	})
}
