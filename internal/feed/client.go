package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokenScope/internal/model"
)

// Client talks to the upstream screener API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchTokens returns the current upstream token list.
func (c *Client) FetchTokens(ctx context.Context) ([]model.Token, error) {
	var tokens []model.Token
	if err := c.getJSON(ctx, c.baseURL+"/tokens", &tokens); err != nil {
		return nil, fmt.Errorf("fetch tokens: %w", err)
	}
	return tokens, nil
}

// FetchTokenHistory returns the sample series for one token.
func (c *Client) FetchTokenHistory(ctx context.Context, address string) ([]model.HistorySample, error) {
	var samples []model.HistorySample
	endpoint := fmt.Sprintf("%s/tokens/%s/history", c.baseURL, url.PathEscape(address))
	if err := c.getJSON(ctx, endpoint, &samples); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", address, err)
	}
	return samples, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
