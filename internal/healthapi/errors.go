package healthapi

import (
	"errors"
	"fmt"
	"net/url"
)

// Outcome labels used for logging and metrics
const (
	OutcomeSuccess     = "success"
	OutcomeStatusError = "status_error"
	OutcomeUnreachable = "unreachable"
	OutcomeUnexpected  = "unexpected"
)

// UpstreamStatusError is returned when the API answers with a non-2xx status
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

// UpstreamUnreachableError is returned when no response could be obtained:
// connection refused, DNS failure, timeout, or a body that could not be read.
type UpstreamUnreachableError struct {
	Err error
}

func (e *UpstreamUnreachableError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamUnreachableError) Unwrap() error {
	return e.Err
}

// UnexpectedError covers every other failure, such as a 2xx body that is not JSON
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// unreachable wraps a transport failure, dropping the url.Error prefix
// so the detail reads "dial tcp ...: connection refused".
func unreachable(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	return &UpstreamUnreachableError{Err: err}
}

// Describe returns the envelope "error" and "message" strings for err
func Describe(err error) (string, string) {
	var statusErr *UpstreamStatusError
	var unreachableErr *UpstreamUnreachableError
	var unexpectedErr *UnexpectedError

	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error(), statusErr.Body
	case errors.As(err, &unreachableErr):
		return "Request error: " + unreachableErr.Error(), "Failed to connect to external API"
	case errors.As(err, &unexpectedErr):
		return "Unexpected error: " + unexpectedErr.Error(), "An unexpected error occurred"
	default:
		return "Unexpected error: " + err.Error(), "An unexpected error occurred"
	}
}

// Outcome classifies err into one of the Outcome* labels
func Outcome(err error) string {
	var statusErr *UpstreamStatusError
	var unreachableErr *UpstreamUnreachableError

	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &statusErr):
		return OutcomeStatusError
	case errors.As(err, &unreachableErr):
		return OutcomeUnreachable
	default:
		return OutcomeUnexpected
	}
}
