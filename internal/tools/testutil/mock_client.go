package testutil

import (
	"context"
	"net/url"
	"sync"
)

// MockAPIClient is a mock implementation of tools.APIClient for testing.
// Behavior is set through GetFunc; every call is recorded.
type MockAPIClient struct {
	GetFunc func(ctx context.Context, resource string, query url.Values) (interface{}, error)

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded Get invocation
type Call struct {
	Resource string
	Query    url.Values
}

// Get mocks the upstream request
func (m *MockAPIClient) Get(ctx context.Context, resource string, query url.Values) (interface{}, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Resource: resource, Query: cloneValues(query)})
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, resource, query)
	}
	return map[string]interface{}{"data": []interface{}{}}, nil
}

// Calls returns a copy of the recorded calls
func (m *MockAPIClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of Get invocations
func (m *MockAPIClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastQuery returns the query of the most recent call, or nil
func (m *MockAPIClient) LastQuery() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1].Query
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
