// Package heartrate provides the get_heart_rate tool.
package heartrate

import (
	"context"
	"errors"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/refractionpoint/health-mcp-go/internal/healthapi"
	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// ToolName is the MCP name of the heart rate tool
const ToolName = "get_heart_rate"

const description = "Get heart rate data with filtering, sorting, and pagination from the external API. " +
	"Returns heart rate data, recovery data, summary, and metadata exactly as the API sends them."

// Schema is the MCP definition of get_heart_rate
var Schema = mcp.NewTool(ToolName,
	mcp.WithDescription(description),
	mcp.WithString("start_date",
		mcp.Description("ISO 8601 format (e.g., '2023-12-01T00:00:00Z')")),
	mcp.WithString("end_date",
		mcp.Description("ISO 8601 format (e.g., '2023-12-31T23:59:59Z')")),
	mcp.WithString("workout_id",
		mcp.Description("Filter by specific workout ID")),
	mcp.WithString("source",
		mcp.Description("Filter by data source (e.g., 'Apple Health')")),
	mcp.WithNumber("min_avg",
		mcp.Description("Minimum average heart rate")),
	mcp.WithNumber("max_avg",
		mcp.Description("Maximum average heart rate")),
	mcp.WithNumber("min_max",
		mcp.Description("Minimum maximum heart rate")),
	mcp.WithNumber("max_max",
		mcp.Description("Maximum maximum heart rate")),
	mcp.WithNumber("min_min",
		mcp.Description("Minimum minimum heart rate")),
	mcp.WithNumber("max_min",
		mcp.Description("Maximum minimum heart rate")),
	mcp.WithString("sort_by",
		mcp.Description("Sort field (default: date)")),
	mcp.WithString("sort_order",
		mcp.Description("Sort order (default: desc)")),
	mcp.WithNumber("limit",
		mcp.Description("Number of results to return (1-100, default: 20)"),
		mcp.Min(1),
		mcp.Max(tools.MaxLimit)),
	mcp.WithNumber("offset",
		mcp.Description("Number of results to skip (default: 0)"),
		mcp.Min(0)),
)

func init() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        ToolName,
		Description: description,
		Profile:     "heart_rate",
		Schema:      Schema,
		Handler:     handle,
	})
}

// QueryParams are the validated get_heart_rate arguments
type QueryParams struct {
	StartDate *string
	EndDate   *string
	WorkoutID *string
	Source    *string
	MinAvg    *float64
	MaxAvg    *float64
	MinMax    *float64
	MaxMax    *float64
	MinMin    *float64
	MaxMin    *float64
	tools.Pagination
}

// ParseQueryParams validates raw tool arguments
func ParseQueryParams(args map[string]interface{}) (*QueryParams, error) {
	r := tools.NewArgReader(args)
	r.RejectUnknown(Schema)

	p := &QueryParams{
		StartDate:  r.OptionalString("start_date"),
		EndDate:    r.OptionalString("end_date"),
		WorkoutID:  r.OptionalString("workout_id"),
		Source:     r.OptionalString("source"),
		MinAvg:     r.OptionalFloat("min_avg"),
		MaxAvg:     r.OptionalFloat("max_avg"),
		MinMax:     r.OptionalFloat("min_max"),
		MaxMax:     r.OptionalFloat("max_max"),
		MinMin:     r.OptionalFloat("min_min"),
		MaxMin:     r.OptionalFloat("max_min"),
		Pagination: tools.ReadPagination(r),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := p.Pagination.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Query converts the parameters to the upstream query string, omitting unset filters
func (p *QueryParams) Query() url.Values {
	q := url.Values{}
	tools.SetString(q, "start_date", p.StartDate)
	tools.SetString(q, "end_date", p.EndDate)
	tools.SetString(q, "workout_id", p.WorkoutID)
	tools.SetString(q, "source", p.Source)
	tools.SetFloat(q, "min_avg", p.MinAvg)
	tools.SetFloat(q, "max_avg", p.MaxAvg)
	tools.SetFloat(q, "min_max", p.MinMax)
	tools.SetFloat(q, "max_max", p.MaxMax)
	tools.SetFloat(q, "min_min", p.MinMin)
	tools.SetFloat(q, "max_min", p.MaxMin)
	p.Pagination.Encode(q)
	return q
}

// ErrorEnvelope is returned in place of the API body when the call fails
type ErrorEnvelope struct {
	Error        string                     `json:"error"`
	Message      string                     `json:"message"`
	Data         []map[string]interface{}   `json:"data"`
	RecoveryData []map[string]interface{}   `json:"recovery_data"`
	Summary      healthapi.HeartRateSummary `json:"summary"`
	Meta         healthapi.HeartRateMeta    `json:"meta"`
}

// NewErrorEnvelope builds the fixed-shape failure response for err
func NewErrorEnvelope(err error) *ErrorEnvelope {
	errText, message := healthapi.Describe(err)
	return &ErrorEnvelope{
		Error:        errText,
		Message:      message,
		Data:         []map[string]interface{}{},
		RecoveryData: []map[string]interface{}{},
		Meta:         healthapi.EmptyHeartRateMeta(),
	}
}

// GetHeartRate validates args, queries the API and returns its body.
// Upstream failures yield an *ErrorEnvelope with a nil error;
// invalid arguments yield a *tools.ValidationError and no request is made.
func GetHeartRate(ctx context.Context, client tools.APIClient, args map[string]interface{}) (interface{}, error) {
	params, err := ParseQueryParams(args)
	if err != nil {
		return nil, err
	}

	body, err := client.Get(ctx, healthapi.ResourceHeartRate, params.Query())
	if err != nil {
		tools.Logger(ctx).Warn("Heart rate request failed",
			"request_id", tools.RequestID(ctx),
			"error", err)
		return NewErrorEnvelope(err), nil
	}
	return body, nil
}

func handle(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	client, err := tools.GetAPIClient(ctx)
	if err != nil {
		return tools.ErrorResult(err.Error()), nil
	}

	result, err := GetHeartRate(ctx, client, args)
	if err != nil {
		var validationErr *tools.ValidationError
		if errors.As(err, &validationErr) {
			return tools.ErrorResult(validationErr.Error()), nil
		}
		return nil, err
	}

	return tools.SuccessResult(result), nil
}
