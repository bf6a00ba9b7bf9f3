package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkdindustries/codi/internal/core"
)

type fakeSearcher struct {
	queries []string
	payload string
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	if query == "" {
		return "", core.ErrInvalidArgument
	}
	return f.payload, f.err
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("search_internet")
	assert.True(t, ok)
	assert.Equal(t, KindSearchInternet, kind)
	assert.Equal(t, "search_internet", kind.String())

	kind, ok = ParseKind("get_weather")
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, kind)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewSearchTool(&fakeSearcher{}))
	assert.Equal(t, 1, r.Len())

	tool, err := r.Resolve("search_internet")
	require.NoError(t, err)
	assert.Equal(t, KindSearchInternet, tool.Kind())

	_, err = r.Resolve("rm_rf")
	assert.ErrorIs(t, err, core.ErrUnknownTool)

	_, err = NewRegistry().Resolve("search_internet")
	assert.ErrorIs(t, err, core.ErrUnknownTool, "known kind that was not registered")
}

func TestSearchToolDefinition(t *testing.T) {
	defs := NewRegistry(NewSearchTool(&fakeSearcher{})).Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "search_internet", defs[0].Name)

	b, err := json.Marshal(defs[0].Parameters)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(b, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"search_query"}, schema["required"])
	assert.Contains(t, schema["properties"], "search_query")
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    string
		wantErr error
	}{
		{"valid", `{"search_query": "Scotiabank Q1 2024 dividend"}`, "Scotiabank Q1 2024 dividend", nil},
		{"extra fields ignored", `{"search_query": "eps", "lang": "en"}`, "eps", nil},
		{"empty value passes through", `{"search_query": ""}`, "", nil},
		{"missing field", `{"query": "eps"}`, "", core.ErrMalformedArguments},
		{"not json", `search_query=eps`, "", core.ErrMalformedArguments},
		{"not an object", `["eps"]`, "", core.ErrMalformedArguments},
		{"null", `null`, "", core.ErrMalformedArguments},
		{"wrong type", `{"search_query": 42}`, "", core.ErrMalformedArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseArguments(%q) error = %v, want %v", tt.args, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchToolExecute(t *testing.T) {
	s := &fakeSearcher{payload: `[{"link":"https://a","snippet":"b"}]`}
	tool := NewSearchTool(s)

	out, err := tool.Execute(context.Background(), `{"search_query":"dividend"}`)
	require.NoError(t, err)
	assert.Equal(t, s.payload, out)
	assert.Equal(t, []string{"dividend"}, s.queries)

	_, err = tool.Execute(context.Background(), `{"search_query":""}`)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = tool.Execute(context.Background(), `{}`)
	assert.ErrorIs(t, err, core.ErrMalformedArguments)
	assert.Len(t, s.queries, 2, "malformed arguments never reach the searcher")
}
