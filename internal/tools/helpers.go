package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ValidationError reports a caller-supplied argument that is mistyped or out of range.
// It is surfaced to the caller as a tool error and never converted into a response envelope.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// ArgReader extracts typed tool arguments, remembering the first failure.
//
// Integer fields accept JSON integers, whole floats and numeric strings.
// Float fields accept finite numbers and numeric strings. String fields accept strings only.
// An explicit null for an optional field is treated as absent.
type ArgReader struct {
	args map[string]interface{}
	err  *ValidationError
}

// NewArgReader creates an ArgReader over a tool's arguments
func NewArgReader(args map[string]interface{}) *ArgReader {
	return &ArgReader{args: args}
}

// Err returns the first validation failure, or nil
func (r *ArgReader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *ArgReader) fail(field, reason string) {
	if r.err == nil {
		r.err = &ValidationError{Field: field, Reason: reason}
	}
}

// lookup returns the raw value and whether a non-null value was supplied
func (r *ArgReader) lookup(key string) (interface{}, bool) {
	v, ok := r.args[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// OptionalString reads an optional string argument
func (r *ArgReader) OptionalString(key string) *string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, fmt.Sprintf("expected a string, got %s", typeName(v)))
		return nil
	}
	return &s
}

// OptionalInt reads an optional integer argument
func (r *ArgReader) OptionalInt(key string) *int {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(key, err.Error())
		return nil
	}
	return &n
}

// OptionalFloat reads an optional float argument
func (r *ArgReader) OptionalFloat(key string) *float64 {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		r.fail(key, err.Error())
		return nil
	}
	return &f
}

// String reads a string argument that has a default. Null is a type error.
func (r *ArgReader) String(key, defaultValue string) string {
	v, present := r.args[key]
	if !present {
		return defaultValue
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, fmt.Sprintf("expected a string, got %s", typeName(v)))
		return defaultValue
	}
	return s
}

// Int reads an integer argument that has a default. Null is a type error.
func (r *ArgReader) Int(key string, defaultValue int) int {
	v, present := r.args[key]
	if !present {
		return defaultValue
	}
	if v == nil {
		r.fail(key, "expected an integer, got null")
		return defaultValue
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(key, err.Error())
		return defaultValue
	}
	return n
}

// RejectUnknown fails on any argument not declared by the tool schema
func (r *ArgReader) RejectUnknown(schema mcp.Tool) {
	if unknown := GetUnknownParameters(schema, r.args); len(unknown) > 0 {
		r.fail(unknown[0], "unknown parameter")
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return wholeFloat(n)
	case float32:
		return wholeFloat(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n.String())
		}
		return wholeFloat(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return wholeFloat(f)
		}
		return 0, fmt.Errorf("expected an integer, got %q", n)
	default:
		return 0, fmt.Errorf("expected an integer, got %s", typeName(v))
	}
}

func wholeFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected an integer, got %v", f)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected an integer, got fractional number %v", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int(f), nil
}

func toFloat(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Pagination carries the sort and paging fields shared by every list tool
type Pagination struct {
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ReadPagination extracts sort_by, sort_order, limit and offset with their defaults
func ReadPagination(r *ArgReader) Pagination {
	return Pagination{
		SortBy:    r.String("sort_by", "date"),
		SortOrder: r.String("sort_order", "desc"),
		Limit:     r.Int("limit", DefaultLimit),
		Offset:    r.Int("offset", 0),
	}
}

// Validate enforces 1 <= limit <= 100 and offset >= 0
func (p Pagination) Validate() error {
	if p.Limit < 1 || p.Limit > MaxLimit {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d, got %d", MaxLimit, p.Limit)}
	}
	if p.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: fmt.Sprintf("must be greater than or equal to 0, got %d", p.Offset)}
	}
	return nil
}

// Encode writes the pagination fields into q
func (p Pagination) Encode(q url.Values) {
	q.Set("sort_by", p.SortBy)
	q.Set("sort_order", p.SortOrder)
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
}

// SetString adds key to q when v is set. Empty strings are kept.
func SetString(q url.Values, key string, v *string) {
	if v != nil {
		q.Set(key, *v)
	}
}

// SetInt adds key to q as base-10 text when v is set
func SetInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

// SetFloat adds key to q as decimal text when v is set
func SetFloat(q url.Values, key string, v *float64) {
	if v != nil {
		q.Set(key, FormatFloat(*v))
	}
}

// FormatFloat renders f the way the upstream expects: whole values keep a ".0" suffix.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
