// Package healthapi is the HTTP client for the external health data API.
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/refractionpoint/health-mcp-go/internal/metrics"
)

// Resources served under /api/v1
const (
	ResourceWorkouts  = "workouts"
	ResourceHeartRate = "heart-rate"
)

const (
	apiPrefix  = "/api/v1/"
	tracerName = "github.com/refractionpoint/health-mcp-go/internal/healthapi"
)

// Client issues read-only GET requests to the health data API.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracerProvider sets the provider used for request spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewClient creates a client for the API rooted at baseURL.
// Every request is bounded by timeout; connections are not reused between requests
// and redirects are returned as-is.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: slog.Default(),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs exactly one GET {base}/api/v1/{resource}?{query} and returns the decoded
// JSON body. Numbers are preserved as json.Number.
//
// Failures are reported as *UpstreamStatusError, *UpstreamUnreachableError or *UnexpectedError.
func (c *Client) Get(ctx context.Context, resource string, query url.Values) (interface{}, error) {
	ctx, span := c.tracer.Start(ctx, "healthapi.Get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("healthapi.resource", resource)),
	)
	defer span.End()

	start := time.Now()
	body, status, err := c.get(ctx, resource, query)
	duration := time.Since(start)
	outcome := Outcome(err)

	metrics.GetManager(ctx).RecordUpstreamRequest(resource, outcome, duration)
	span.SetAttributes(attribute.String("healthapi.outcome", outcome))
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("Health API request failed",
			"resource", resource,
			"status", status,
			"outcome", outcome,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	c.logger.Debug("Health API request completed",
		"resource", resource,
		"status", status,
		"duration_ms", duration.Milliseconds())
	return body, nil
}

func (c *Client) get(ctx context.Context, resource string, query url.Values) (interface{}, int, error) {
	endpoint := c.baseURL + apiPrefix + resource
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &UnexpectedError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, unreachable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, unreachable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &UpstreamStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	body, err := decodeJSON(data)
	if err != nil {
		return nil, resp.StatusCode, &UnexpectedError{Err: err}
	}
	return body, resp.StatusCode, nil
}

// decodeJSON parses a single JSON document, keeping numbers verbatim
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty response body")
		}
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON response: trailing data after document")
	}
	return v, nil
}
