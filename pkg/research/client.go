// Package research provides a Go SDK for the research feed server API.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is an HTTP client for the research feed server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("research api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodGet, path, nil, out)
}

// ---------------------------------------------------------------------------
// Endpoints
// ---------------------------------------------------------------------------

// Health returns the server health summary.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feed fetches the current feed view. Params named in p overlay the
// server-side session filter; zero params return the view as-is.
func (c *Client) Feed(ctx context.Context, p FeedParams) (*Feed, error) {
	path := "/api/feed"
	if q := p.encode(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out Feed
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPage navigates one asset-type group to a page and returns the updated
// view.
func (c *Client) SetPage(ctx context.Context, label string, page int) (*Feed, error) {
	body := map[string]any{"label": label, "page": page}
	var out Feed
	if err := c.request(ctx, http.MethodPost, "/api/feed/page", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Preferences returns the persisted filter preferences.
func (c *Client) Preferences(ctx context.Context) (*Preferences, error) {
	var out Preferences
	if err := c.get(ctx, "/api/prefs", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePreferences replaces the persisted filter preferences.
func (c *Client) UpdatePreferences(ctx context.Context, p Preferences) (*Preferences, error) {
	var out Preferences
	if err := c.request(ctx, http.MethodPut, "/api/prefs", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoryDates lists days with an archived feed, oldest first.
func (c *Client) HistoryDates(ctx context.Context) ([]string, error) {
	var out struct {
		Dates []string `json:"dates"`
	}
	if err := c.get(ctx, "/api/history/dates", &out); err != nil {
		return nil, err
	}
	return out.Dates, nil
}

// History fetches the archived feed for a YYYY-MM-DD date.
func (c *Client) History(ctx context.Context, date string) (*Feed, error) {
	var out Feed
	if err := c.get(ctx, "/api/history/"+url.PathEscape(date), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalyst fetches recent headlines for a symbol. Zero hours or limit keep
// the server defaults.
func (c *Client) Catalyst(ctx context.Context, symbol string, hours, limit int) (*Catalyst, error) {
	q := url.Values{}
	if hours > 0 {
		q.Set("hours", strconv.Itoa(hours))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/catalyst/" + url.PathEscape(symbol)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out Catalyst
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Performance fetches per-source outcome statistics.
func (c *Client) Performance(ctx context.Context) (*Performance, error) {
	var out Performance
	if err := c.get(ctx, "/api/performance", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
