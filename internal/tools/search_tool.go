package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/codi/internal/core"
)

// Searcher is the web-search adapter behind search_internet
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// SearchTool lets the model search the web for finance-related queries
type SearchTool struct {
	searcher Searcher
}

var _ Tool = (*SearchTool)(nil)

func NewSearchTool(s Searcher) *SearchTool {
	return &SearchTool{searcher: s}
}

type searchArgs struct {
	SearchQuery *string `json:"search_query"`
}

func (t *SearchTool) Kind() Kind { return KindSearchInternet }

func (t *SearchTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name:        KindSearchInternet.String(),
		Description: "Search the internet for the search_query on Finance.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"search_query": {
					Type:        "string",
					Description: "The query to search for on the internet.",
				},
			},
			Required: []string{"search_query"},
		},
	}
}

// ParseArguments extracts search_query from the model's argument object.
func ParseArguments(arguments string) (string, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedArguments, err)
	}
	if args.SearchQuery == nil {
		return "", fmt.Errorf("%w: missing required field search_query", core.ErrMalformedArguments)
	}
	return *args.SearchQuery, nil
}

func (t *SearchTool) Execute(ctx context.Context, arguments string) (string, error) {
	query, err := ParseArguments(arguments)
	if err != nil {
		return "", err
	}
	return t.searcher.Search(ctx, query)
}
