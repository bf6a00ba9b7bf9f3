package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkdindustries/codi/internal/core"
)

// fakeAPI stands in for the hosted completion endpoint and records the
// decoded request bodies it receives.
type fakeAPI struct {
	t        *testing.T
	status   int
	body     string
	stream   []string
	requests chan map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, status: http.StatusOK, requests: make(chan map[string]any, 4)}
}

func (f *fakeAPI) start() *OpenAIClient {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		f.requests <- decoded

		if f.stream != nil {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, chunk := range f.stream {
				fmt.Fprintf(w, "data: %s\n\n", chunk)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	}))
	f.t.Cleanup(srv.Close)

	return NewOpenAIClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "ft:test-model",
	})
}

func completionBody(message string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"ft:test-model",
		"choices":[{"index":0,"message":` + message + `,"finish_reason":"stop"}]}`
}

func chunk(delta string, finish string) string {
	fr := "null"
	if finish != "" {
		fr = `"` + finish + `"`
	}
	return `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"ft:test-model",
		"choices":[{"index":0,"delta":` + delta + `,"finish_reason":` + fr + `}]}`
}

func searchDefinition() core.ToolDefinition {
	return core.ToolDefinition{
		Name:        "search_internet",
		Description: "Search the internet for the search_query on Finance.",
		Parameters: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"search_query": {Type: "string"}},
			Required:   []string{"search_query"},
		},
	}
}

func TestComplete_PlainText(t *testing.T) {
	api := newFakeAPI(t)
	api.body = completionBody(`{"role":"assistant","content":"Hello! How can I help?"}`)
	client := api.start()

	got, err := client.Complete(context.Background(), &core.CompletionRequest{
		Turns: []core.Turn{
			{Role: core.RoleSystem, Content: "prompt"},
			{Role: core.RoleUser, Content: "Hello"},
		},
		Tools:      []core.ToolDefinition{searchDefinition()},
		ToolChoice: core.ToolChoiceAuto,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", got.Content)
	assert.Empty(t, got.ToolCalls)
	assert.Equal(t, "stop", got.FinishReason)

	req := <-api.requests
	assert.Equal(t, "ft:test-model", req["model"])
	assert.Equal(t, "auto", req["tool_choice"])
	tools := req["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "search_internet", fn["name"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestComplete_ToolCalls(t *testing.T) {
	api := newFakeAPI(t)
	api.body = completionBody(`{"role":"assistant","content":"","tool_calls":[
		{"id":"call_1","type":"function","function":{"name":"search_internet","arguments":"{\"search_query\":\"Scotiabank Q1 2024 dividend\"}"}}]}`)
	client := api.start()

	got, err := client.Complete(context.Background(), &core.CompletionRequest{
		Turns: []core.Turn{{Role: core.RoleUser, Content: "dividend?"}},
		Tools: []core.ToolDefinition{searchDefinition()},
	})
	require.NoError(t, err)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, core.ToolCallRequest{
		ID:        "call_1",
		Name:      "search_internet",
		Arguments: `{"search_query":"Scotiabank Q1 2024 dividend"}`,
	}, got.ToolCalls[0])
}

func TestComplete_SendsToolTurns(t *testing.T) {
	api := newFakeAPI(t)
	api.body = completionBody(`{"role":"assistant","content":"done"}`)
	client := api.start()

	_, err := client.Complete(context.Background(), &core.CompletionRequest{
		Turns: []core.Turn{
			{Role: core.RoleUser, Content: "q"},
			{Role: core.RoleAssistant, ToolCalls: []core.ToolCallRequest{{ID: "call_1", Name: "search_internet", Arguments: `{"search_query":"q"}`}}},
			{Role: core.RoleTool, ToolCallID: "call_1", Name: "search_internet", Content: "[]"},
		},
	})
	require.NoError(t, err)

	req := <-api.requests
	_, hasTools := req["tools"]
	assert.False(t, hasTools, "no manifest when no tools are offered")

	msgs := req["messages"].([]any)
	require.Len(t, msgs, 3)
	call := msgs[1].(map[string]any)["tool_calls"].([]any)[0].(map[string]any)
	assert.Equal(t, "call_1", call["id"])
	tool := msgs[2].(map[string]any)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_1", tool["tool_call_id"])
	assert.Equal(t, "search_internet", tool["name"])
}

func TestComplete_Stream(t *testing.T) {
	api := newFakeAPI(t)
	api.stream = []string{
		chunk(`{"role":"assistant","content":"The dividend "}`, ""),
		chunk(`{"content":"was $1.06 "}`, ""),
		chunk(`{"content":"[Answer](https://scotiabank.com)"}`, "stop"),
	}
	client := api.start()

	var deltas []string
	got, err := client.Complete(context.Background(), &core.CompletionRequest{
		Turns:   []core.Turn{{Role: core.RoleUser, Content: "q"}},
		Stream:  true,
		OnDelta: func(s string) { deltas = append(deltas, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, "The dividend was $1.06 [Answer](https://scotiabank.com)", got.Content)
	assert.Equal(t, []string{"The dividend ", "was $1.06 ", "[Answer](https://scotiabank.com)"}, deltas)
	assert.Equal(t, "stop", got.FinishReason)

	req := <-api.requests
	assert.Equal(t, true, req["stream"])
}

func TestComplete_StreamToolCalls(t *testing.T) {
	api := newFakeAPI(t)
	api.stream = []string{
		chunk(`{"role":"assistant","tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"search_internet","arguments":""}}]}`, ""),
		chunk(`{"tool_calls":[{"index":0,"function":{"arguments":"{\"search_"}}]}`, ""),
		chunk(`{"tool_calls":[{"index":0,"function":{"arguments":"query\":\"eps\"}"}}]}`, ""),
		chunk(`{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"search_internet","arguments":"{\"search_query\":\"dividend\"}"}}]}`, ""),
		chunk(`{}`, "tool_calls"),
	}
	client := api.start()

	got, err := client.Complete(context.Background(), &core.CompletionRequest{
		Turns:  []core.Turn{{Role: core.RoleUser, Content: "q"}},
		Tools:  []core.ToolDefinition{searchDefinition()},
		Stream: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", got.FinishReason)
	assert.Equal(t, []core.ToolCallRequest{
		{ID: "call_1", Name: "search_internet", Arguments: `{"search_query":"eps"}`},
		{ID: "call_2", Name: "search_internet", Arguments: `{"search_query":"dividend"}`},
	}, got.ToolCalls)
}

func TestComplete_Errors(t *testing.T) {
	t.Run("context length", func(t *testing.T) {
		api := newFakeAPI(t)
		api.status = http.StatusBadRequest
		api.body = `{"error":{"message":"This model's maximum context length is 16385 tokens.","type":"invalid_request_error","param":"messages","code":"context_length_exceeded"}}`
		client := api.start()

		_, err := client.Complete(context.Background(), &core.CompletionRequest{Turns: []core.Turn{{Role: core.RoleUser, Content: "q"}}})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrHostedService)

		var hse *core.HostedServiceError
		require.True(t, errors.As(err, &hse))
		assert.Equal(t, http.StatusBadRequest, hse.StatusCode)
		assert.Equal(t, "context_length_exceeded", hse.Code)
		assert.True(t, hse.LimitReached)
	})

	t.Run("server error", func(t *testing.T) {
		api := newFakeAPI(t)
		api.status = http.StatusInternalServerError
		api.body = `{"error":{"message":"boom","type":"server_error"}}`
		client := api.start()

		_, err := client.Complete(context.Background(), &core.CompletionRequest{Turns: []core.Turn{{Role: core.RoleUser, Content: "q"}}})
		var hse *core.HostedServiceError
		require.True(t, errors.As(err, &hse))
		assert.Equal(t, http.StatusInternalServerError, hse.StatusCode)
		assert.False(t, hse.LimitReached)
	})

	t.Run("stream rejected", func(t *testing.T) {
		api := newFakeAPI(t)
		api.status = http.StatusUnauthorized
		api.body = `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`
		client := api.start()

		_, err := client.Complete(context.Background(), &core.CompletionRequest{
			Turns:  []core.Turn{{Role: core.RoleUser, Content: "q"}},
			Stream: true,
		})
		assert.ErrorIs(t, err, core.ErrHostedService)
	})

	t.Run("no choices", func(t *testing.T) {
		api := newFakeAPI(t)
		api.body = `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`
		client := api.start()

		_, err := client.Complete(context.Background(), &core.CompletionRequest{Turns: []core.Turn{{Role: core.RoleUser, Content: "q"}}})
		assert.ErrorIs(t, err, core.ErrHostedService)
	})
}
