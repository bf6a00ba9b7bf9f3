package testing

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pkdindustries/codi/internal/core"
)

// MockCompleter implements core.Completer from a script of responses
type MockCompleter struct {
	mu        sync.Mutex
	Responses []MockResponse
	Requests  []core.CompletionRequest
}

// MockResponse is one scripted completion result
type MockResponse struct {
	Completion core.Completion
	Err        error
	// Chunks, if set, are streamed to OnDelta in order; otherwise the whole
	// content is sent as a single delta.
	Chunks []string
}

var _ core.Completer = (*MockCompleter)(nil)

// NewMockCompleter scripts plain-text replies
func NewMockCompleter(replies ...string) *MockCompleter {
	m := &MockCompleter{}
	for _, r := range replies {
		m.Responses = append(m.Responses, MockResponse{Completion: core.Completion{Content: r, FinishReason: "stop"}})
	}
	return m
}

// Then appends a scripted response
func (m *MockCompleter) Then(resp MockResponse) *MockCompleter {
	m.Responses = append(m.Responses, resp)
	return m
}

// ThenToolCalls appends a response that requests the given tool calls
func (m *MockCompleter) ThenToolCalls(calls ...core.ToolCallRequest) *MockCompleter {
	return m.Then(MockResponse{Completion: core.Completion{ToolCalls: calls, FinishReason: "tool_calls"}})
}

func (m *MockCompleter) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	m.mu.Lock()
	recorded := *req
	recorded.Turns = append([]core.Turn(nil), req.Turns...)
	recorded.Tools = append([]core.ToolDefinition(nil), req.Tools...)
	recorded.OnDelta = nil
	m.Requests = append(m.Requests, recorded)

	if len(m.Responses) == 0 {
		m.mu.Unlock()
		return nil, &core.HostedServiceError{Err: errors.New("mock: no scripted response")}
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &core.HostedServiceError{Err: err}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	if req.Stream && req.OnDelta != nil {
		chunks := resp.Chunks
		if chunks == nil && resp.Completion.Content != "" {
			chunks = []string{resp.Completion.Content}
		}
		for _, c := range chunks {
			req.OnDelta(c)
		}
		if resp.Chunks != nil {
			resp.Completion.Content = strings.Join(resp.Chunks, "")
		}
	}

	out := resp.Completion
	return &out, nil
}

// Calls returns the number of completion requests received
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// Request returns the i-th recorded request
func (m *MockCompleter) Request(i int) core.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Requests[i]
}
