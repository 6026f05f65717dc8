// Package websearch queries Google Custom Search for web evidence.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Config configures the Google Custom Search client.
type Config struct {
	APIKey string
	CX     string

	// NumResults per query, capped by the API at 10.
	NumResults int

	// Endpoint overrides the API URL, for tests.
	Endpoint string

	// CacheTTL bounds how long identical queries are served from memory.
	// Zero disables caching.
	CacheTTL time.Duration
}

// Client calls Google Custom Search. Identical queries within the TTL
// are served from an in-memory cache to save quota.
type Client struct {
	config Config
	http   *http.Client
	cache  *gocache.Cache
}

// NewClient validates credentials and builds a client. Missing
// credentials are a configuration error so callers fail at startup, not
// on the first claim.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.CX == "" {
		return nil, o4terrors.New(o4terrors.ErrCodeMissingCredentials,
			"GOOGLE_API_KEY and GOOGLE_CX must be configured for web search")
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = 5
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	var cache *gocache.Cache
	if cfg.CacheTTL > 0 {
		cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Client{
		config: cfg,
		http:   &http.Client{},
		cache:  cache,
	}, nil
}

// Search returns web results for a query. Transport and API failures are
// wrapped as transient retrieval errors.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(query); ok {
			slog.Debug("web_search_cache_hit", "query", query)
			return cached.([]Result), nil
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.config.APIKey)
	params.Set("cx", c.config.CX)
	params.Set("num", fmt.Sprintf("%d", c.config.NumResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeWebSearchFailed, "building search request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeWebSearchFailed, "calling web search", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, o4terrors.Newf(o4terrors.ErrCodeWebSearchFailed,
			"web search returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeWebSearchFailed, "decoding search response", err)
	}

	results := payload.Items
	if results == nil {
		results = []Result{}
	}

	if c.cache != nil {
		c.cache.Set(query, results, gocache.DefaultExpiration)
	}

	slog.Debug("web_search_done", "query", query, "results", len(results))
	return results, nil
}
