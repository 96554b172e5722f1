package txservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"isafeDashboard/internal/model"
)

// HTTPClient is the subset of *http.Client the tx-service client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx tx-service responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tx-service returned status %d: %s", e.StatusCode, e.Body)
}

// Client reads stored transaction proposals from the tx-service.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

func NewClient(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// GetTransaction returns the stored transaction data and description for digest.
func (c *Client) GetTransaction(ctx context.Context, digest string) (model.TransactionDetails, error) {
	var details model.TransactionDetails
	resp, err := c.do(ctx, "/transaction/"+url.PathEscape(digest))
	if err != nil {
		return details, fmt.Errorf("get transaction %s: %w", digest, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return details, fmt.Errorf("get transaction %s: decode response: %w", digest, err)
	}
	return details, nil
}

// Health checks that the service answers its health route.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, "/health")
	if err != nil {
		return fmt.Errorf("tx-service health: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
