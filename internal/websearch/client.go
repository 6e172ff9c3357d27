// Package websearch fetches short text snippets from the DuckDuckGo
// Instant Answer API for questions the catalog can't answer.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public Instant Answer API.
	DefaultEndpoint = "https://api.duckduckgo.com/"
	defaultTimeout  = 5 * time.Second
	maxRelated      = 5
)

// Searcher returns snippets for a query. It never fails: errors come back
// as a single placeholder snippet, and no results as an empty slice.
type Searcher interface {
	Search(ctx context.Context, query string) []string
}

// Config configures the client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
}

// Client provides access to the DuckDuckGo Instant Answer API.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient creates a new search client.
// Rate limited to one request per second with a burst of 3.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		endpoint:    cfg.Endpoint,
		timeout:     cfg.Timeout,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
	}
}

// instantAnswer is the subset of the API response we read.
type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	RelatedTopics []struct {
		Text   string `json:"Text"`
		Result string `json:"Result"`
	} `json:"RelatedTopics"`
}

// Search queries the API within the configured timeout. The rate limiter wait
// counts against the same deadline.
func (c *Client) Search(ctx context.Context, query string) []string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.fetch(ctx, query)
	if err != nil {
		c.logger.Warn("web search failed", "error", err)
		return []string{fmt.Sprintf("(Web search failed: %v)", err)}
	}
	return snippets(answer)
}

func (c *Client) fetch(ctx context.Context, query string) (*instantAnswer, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("no_redirect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

// snippets collects the abstract and up to five related-topic texts.
// Grouped topics carry no text of their own and are skipped.
func snippets(a *instantAnswer) []string {
	var out []string
	if s := htmlToText(a.AbstractText); s != "" {
		out = append(out, s)
	}

	topics := a.RelatedTopics
	if len(topics) > maxRelated {
		topics = topics[:maxRelated]
	}
	for _, t := range topics {
		text := t.Text
		if text == "" {
			text = t.Result
		}
		if s := htmlToText(text); s != "" {
			out = append(out, s)
		}
	}
	return out
}
