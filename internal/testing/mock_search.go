package testing

import (
	"context"
	"sync"

	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/search"
)

// MockSearcher implements tools.Searcher with canned results
type MockSearcher struct {
	mu      sync.Mutex
	Results []search.Result
	Err     error
	Queries []string
}

// NewMockSearcher returns a searcher answering every query with results
func NewMockSearcher(results ...search.Result) *MockSearcher {
	return &MockSearcher{Results: results}
}

func (m *MockSearcher) Search(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if query == "" {
		return "", core.ErrInvalidArgument
	}
	if m.Err != nil {
		return "", m.Err
	}
	return search.Encode(m.Results)
}

// Calls returns the number of searches performed
func (m *MockSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// ScotiabankResults is a provider answer for the dividend scenario
func ScotiabankResults() []search.Result {
	return []search.Result{
		{Link: "https://www.scotiabank.com/ca/en/about/investors-shareholders/dividends.html", Snippet: "Scotiabank declared a quarterly dividend of $1.06 per common share."},
		{Link: "https://www.newswire.ca/news-releases/scotiabank-reports-first-quarter-2024-results.html", Snippet: "Scotiabank reports first quarter 2024 results."},
		{Link: "https://www.marketbeat.com/stocks/NYSE/BNS/dividend/", Snippet: "Bank of Nova Scotia pays an annual dividend of $4.24."},
	}
}
