package tools

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	apiClientKey contextKey = "health-api-client"
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request-id"
)

const (
	// DefaultLimit is the page size used when the caller omits limit
	DefaultLimit = 20
	// MaxLimit is the largest page size the upstream accepts
	MaxLimit = 100
)

// ErrNoAPIClient is returned when a tool runs without a health API client in its context
var ErrNoAPIClient = errors.New("health API client not configured")

// APIClient is the upstream health data API as seen by tool handlers.
// *healthapi.Client implements it; tests substitute mocks.
type APIClient interface {
	Get(ctx context.Context, resource string, query url.Values) (interface{}, error)
}

// WithAPIClient adds an APIClient to the context
func WithAPIClient(ctx context.Context, client APIClient) context.Context {
	return context.WithValue(ctx, apiClientKey, client)
}

// GetAPIClient retrieves the APIClient from context
func GetAPIClient(ctx context.Context) (APIClient, error) {
	if client, ok := ctx.Value(apiClientKey).(APIClient); ok && client != nil {
		return client, nil
	}
	return nil, ErrNoAPIClient
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
