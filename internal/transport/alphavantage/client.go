// Package alphavantage adapts the Alpha Vantage market-data API.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// Client calls Alpha Vantage. The API key is injected here, never by callers.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds Alpha Vantage connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

// NewClient creates an Alpha Vantage client.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Fetch calls the given API function with the given query parameters and
// decodes the JSON payload into out. Transport failures and non-success
// responses surface as upstream errors carrying the provider status when
// available.
func (c *Client) Fetch(ctx context.Context, function string, params url.Values, out any) error {
	q := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	q.Set("function", function)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build alphavantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewUpstreamError(0, "alphavantage %s: %v", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewUpstreamError(resp.StatusCode, "alphavantage %s returned %s", function, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewUpstreamError(0, "alphavantage %s: decode response: %v", function, err)
	}

	return nil
}
