// Package workouts provides the get_workouts tool.
package workouts

import (
	"context"
	"errors"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/refractionpoint/health-mcp-go/internal/healthapi"
	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// ToolName is the MCP name of the workouts tool
const ToolName = "get_workouts"

const description = "Get workouts with filtering, sorting, and pagination from the external API. " +
	"Returns the workout data and metadata exactly as the API sends it."

// Schema is the MCP definition of get_workouts
var Schema = mcp.NewTool(ToolName,
	mcp.WithDescription(description),
	mcp.WithString("start_date",
		mcp.Description("ISO 8601 format (e.g., '2023-12-01T00:00:00Z')")),
	mcp.WithString("end_date",
		mcp.Description("ISO 8601 format (e.g., '2023-12-31T23:59:59Z')")),
	mcp.WithString("workout_type",
		mcp.Description("e.g., 'Outdoor Walk', 'Indoor Walk'")),
	mcp.WithString("location",
		mcp.Description("Indoor or Outdoor")),
	mcp.WithNumber("min_duration",
		mcp.Description("Minimum duration in seconds (integer)")),
	mcp.WithNumber("max_duration",
		mcp.Description("Maximum duration in seconds (integer)")),
	mcp.WithNumber("min_distance",
		mcp.Description("Minimum distance in km")),
	mcp.WithNumber("max_distance",
		mcp.Description("Maximum distance in km")),
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
		Profile:     "workouts",
		Schema:      Schema,
		Handler:     handle,
	})
}

// QueryParams are the validated get_workouts arguments
type QueryParams struct {
	StartDate   *string
	EndDate     *string
	WorkoutType *string
	Location    *string
	MinDuration *int
	MaxDuration *int
	MinDistance *float64
	MaxDistance *float64
	tools.Pagination
}

// ParseQueryParams validates raw tool arguments
func ParseQueryParams(args map[string]interface{}) (*QueryParams, error) {
	r := tools.NewArgReader(args)
	r.RejectUnknown(Schema)

	p := &QueryParams{
		StartDate:   r.OptionalString("start_date"),
		EndDate:     r.OptionalString("end_date"),
		WorkoutType: r.OptionalString("workout_type"),
		Location:    r.OptionalString("location"),
		MinDuration: r.OptionalInt("min_duration"),
		MaxDuration: r.OptionalInt("max_duration"),
		MinDistance: r.OptionalFloat("min_distance"),
		MaxDistance: r.OptionalFloat("max_distance"),
		Pagination:  tools.ReadPagination(r),
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
	tools.SetString(q, "workout_type", p.WorkoutType)
	tools.SetString(q, "location", p.Location)
	tools.SetInt(q, "min_duration", p.MinDuration)
	tools.SetInt(q, "max_duration", p.MaxDuration)
	tools.SetFloat(q, "min_distance", p.MinDistance)
	tools.SetFloat(q, "max_distance", p.MaxDistance)
	p.Pagination.Encode(q)
	return q
}

// ErrorEnvelope is returned in place of the API body when the call fails
type ErrorEnvelope struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Data    []healthapi.Workout   `json:"data"`
	Meta    healthapi.WorkoutMeta `json:"meta"`
}

// NewErrorEnvelope builds the fixed-shape failure response for err
func NewErrorEnvelope(err error) *ErrorEnvelope {
	errText, message := healthapi.Describe(err)
	return &ErrorEnvelope{
		Error:   errText,
		Message: message,
		Data:    []healthapi.Workout{},
		Meta:    healthapi.EmptyWorkoutMeta(),
	}
}

// GetWorkouts validates args, queries the API and returns its body.
// Upstream failures yield an *ErrorEnvelope with a nil error;
// invalid arguments yield a *tools.ValidationError and no request is made.
func GetWorkouts(ctx context.Context, client tools.APIClient, args map[string]interface{}) (interface{}, error) {
	params, err := ParseQueryParams(args)
	if err != nil {
		return nil, err
	}

	body, err := client.Get(ctx, healthapi.ResourceWorkouts, params.Query())
	if err != nil {
		tools.Logger(ctx).Warn("Workouts request failed",
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

	result, err := GetWorkouts(ctx, client, args)
	if err != nil {
		var validationErr *tools.ValidationError
		if errors.As(err, &validationErr) {
			return tools.ErrorResult(validationErr.Error()), nil
		}
		return nil, err
	}

	return tools.SuccessResult(result), nil
}
