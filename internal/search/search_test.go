package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkdindustries/codi/internal/core"
)

const organicPayload = `{
  "search_metadata": {"status": "Success"},
  "organic_results": [
    {"position": 1, "title": "Dividend", "link": "https://scotiabank.com/a", "snippet": "declared a dividend of $1.06", "source": "Scotiabank"},
    {"position": 2, "title": "News", "link": "https://news.example/b", "snippet": "Q1 2024 results"},
    {"position": 3, "title": "Other", "link": "https://other.example/c", "snippet": "quarterly dividend"},
    {"position": 4, "title": "Dropped", "link": "https://dropped.example/d", "snippet": "not included"}
  ]
}`

func newProvider(t *testing.T, status int, body string) (*httptest.Server, <-chan url.Values) {
	t.Helper()
	queries := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case queries <- r.URL.Query():
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}

func TestResults_TopThreeInOrder(t *testing.T) {
	srv, queries := newProvider(t, http.StatusOK, organicPayload)
	c := NewClient("secret", WithBaseURL(srv.URL))

	results, err := c.Results(context.Background(), "Scotiabank Q1 2024 dividend")
	require.NoError(t, err)

	want := []Result{
		{Link: "https://scotiabank.com/a", Snippet: "declared a dividend of $1.06"},
		{Link: "https://news.example/b", Snippet: "Q1 2024 results"},
		{Link: "https://other.example/c", Snippet: "quarterly dividend"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	q := <-queries
	assert.Equal(t, "google", q.Get("engine"))
	assert.Equal(t, "Scotiabank Q1 2024 dividend", q.Get("q"))
	assert.Equal(t, "secret", q.Get("api_key"))
}

func TestSearch_RoundTrip(t *testing.T) {
	srv, _ := newProvider(t, http.StatusOK, organicPayload)
	c := NewClient("secret", WithBaseURL(srv.URL))

	payload, err := c.Search(context.Background(), "dividend")
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	assert.Equal(t, "https://scotiabank.com/a", decoded[0].Link)
	assert.Equal(t, "https://other.example/c", decoded[2].Link)

	// only link and snippet survive the projection
	assert.NotContains(t, payload, "title")
	assert.NotContains(t, payload, "position")
}

func TestSearch_FewerThanLimit(t *testing.T) {
	srv, _ := newProvider(t, http.StatusOK, `{"organic_results":[{"link":"https://a","snippet":"s"}]}`)
	c := NewClient("k", WithBaseURL(srv.URL))

	results, err := c.Results(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		query  string
		want   error
	}{
		{"empty query", http.StatusOK, organicPayload, "", core.ErrInvalidArgument},
		{"blank query", http.StatusOK, organicPayload, "   ", core.ErrInvalidArgument},
		{"no organic results", http.StatusOK, `{"organic_results": []}`, "q", core.ErrSearchUnavailable},
		{"missing organic results", http.StatusOK, `{"search_metadata": {}}`, "q", core.ErrSearchUnavailable},
		{"provider error field", http.StatusOK, `{"error": "Invalid API key."}`, "q", core.ErrSearchUnavailable},
		{"http failure", http.StatusUnauthorized, `{"error": "Invalid API key."}`, "q", core.ErrSearchUnavailable},
		{"garbage body", http.StatusOK, `<html>`, "q", core.ErrSearchUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newProvider(t, tt.status, tt.body)
			c := NewClient("k", WithBaseURL(srv.URL))
			_, err := c.Search(context.Background(), tt.query)
			if !errors.Is(err, tt.want) {
				t.Errorf("Search(%q) error = %v, want %v", tt.query, err, tt.want)
			}
		})
	}
}

func TestSearch_ProviderUnreachable(t *testing.T) {
	srv, _ := newProvider(t, http.StatusOK, organicPayload)
	srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "q")
	assert.ErrorIs(t, err, core.ErrSearchUnavailable)
}

func TestEncode_Empty(t *testing.T) {
	payload, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", payload)
}

func TestResults_LimitIsCapped(t *testing.T) {
	var organic []string
	for i := range 8 {
		organic = append(organic, fmt.Sprintf(`{"link":"https://r%d.example","snippet":"s%d"}`, i, i))
	}
	srv, _ := newProvider(t, http.StatusOK, `{"organic_results":[`+strings.Join(organic, ",")+`]}`)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"above max", 8, MaxLimit},
		{"at max", 3, 3},
		{"below max", 2, 2},
		{"zero keeps default", 0, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("k", WithBaseURL(srv.URL), WithLimit(tt.limit))

			out, err := c.Search(context.Background(), "dividends")
			require.NoError(t, err)
			results, err := Decode(out)
			require.NoError(t, err)
			assert.Len(t, results, tt.want)
			assert.Equal(t, "https://r0.example", results[0].Link)
		})
	}
}

func TestWithTimeout_CopiesHTTPClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient("k", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}
