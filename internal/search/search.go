// Package search queries the hosted web-search provider (SerpAPI) and
// projects its organic results to {link, snippet} pairs.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"pkdindustries/codi/internal/core"
)

const (
	DefaultBaseURL = "https://serpapi.com/search.json"
	DefaultEngine  = "google"
	DefaultLimit   = 3
	// MaxLimit bounds how many results are ever handed to the model.
	MaxLimit       = 3
)

// Result is a single projected search hit
type Result struct {
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type organicResult struct {
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type response struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

// Client performs one search request per query against a fixed engine
type Client struct {
	apiKey     string
	baseURL    string
	engine     string
	limit      int
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithEngine(engine string) Option {
	return func(c *Client) {
		if engine != "" {
			c.engine = engine
		}
	}
}

// WithLimit sets how many results are returned, clamped to 1..MaxLimit.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = min(n, MaxLimit)
		}
	}
}

// WithTimeout bounds each provider request. The http client is copied so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		engine:     DefaultEngine,
		limit:      DefaultLimit,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the query and returns the serialized result list.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	results, err := c.Results(ctx, query)
	if err != nil {
		return "", err
	}
	return Encode(results)
}

// Results runs the query and returns at most limit results in the
// provider's order.
func (c *Client) Results(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrInvalidArgument
	}

	start := time.Now()
	log := zap.S().With("engine", c.engine, "query", query)
	defer core.LogDuration(log, "search", start)

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base url: %v", core.ErrSearchUnavailable, err)
	}
	q := u.Query()
	q.Set("engine", c.engine)
	q.Set("q", query)
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", core.ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", core.ErrSearchUnavailable, err)
	}

	var parsed response
	if jerr := json.Unmarshal(body, &parsed); jerr != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("%w: decode response: %v", core.ErrSearchUnavailable, jerr)
	}
	if resp.StatusCode >= 300 {
		msg := parsed.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: provider returned %d: %s", core.ErrSearchUnavailable, resp.StatusCode, msg)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", core.ErrSearchUnavailable, parsed.Error)
	}
	if len(parsed.OrganicResults) == 0 {
		return nil, fmt.Errorf("%w: no organic results", core.ErrSearchUnavailable)
	}

	organic := parsed.OrganicResults[:min(c.limit, len(parsed.OrganicResults))]
	results := make([]Result, 0, len(organic))
	for _, r := range organic {
		results = append(results, Result(r))
	}
	log.Debugw("search_results", "count", len(results))
	return results, nil
}

// Encode serializes results as an indented JSON array.
func Encode(results []Result) (string, error) {
	if results == nil {
		results = []Result{}
	}
	b, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	return string(b), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload string) ([]Result, error) {
	var results []Result
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}
