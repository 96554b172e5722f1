package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"isafeDashboard/internal/model"
)

// HTTPClient is the subset of *http.Client the indexer client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx indexer responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexer returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// PageRequest selects one page of account events. An empty Cursor starts from
// the oldest event.
type PageRequest struct {
	Cursor string
	Limit  int
}

// EventsPage is one decoded page of account events. LastCursor resumes after
// the page's last event even when NextCursor is empty.
type EventsPage struct {
	Events     []model.Event
	NextCursor string
	LastCursor string
}

// Client reads accounts, events and transaction summaries from the iSafe
// indexer. Every call issues exactly one request.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *zap.Logger
}

func NewClient(baseURL string, httpClient HTTPClient, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetAccountEvents returns every event of an account in indexer order. One
// undecodable record fails the whole call.
func (c *Client) GetAccountEvents(ctx context.Context, address string) ([]model.Event, error) {
	var resp model.EventsResponse
	if err := c.get(ctx, "/events/"+url.PathEscape(address), nil, &resp); err != nil {
		return nil, fmt.Errorf("get account events: %w", err)
	}
	return decodeEvents(resp.Events)
}

// GetAccountEventsPage returns one page of events starting at req.Cursor.
func (c *Client) GetAccountEventsPage(ctx context.Context, address string, req PageRequest) (EventsPage, error) {
	query := url.Values{}
	if req.Cursor != "" {
		query.Set("cursor", req.Cursor)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	var resp model.EventsResponse
	if err := c.get(ctx, "/events/"+url.PathEscape(address), query, &resp); err != nil {
		return EventsPage{}, fmt.Errorf("get account events page: %w", err)
	}
	decoded, err := decodeEvents(resp.Events)
	if err != nil {
		return EventsPage{}, err
	}
	page := EventsPage{Events: decoded, NextCursor: resp.NextCursor, LastCursor: req.Cursor}
	if n := len(resp.Events); n > 0 {
		page.LastCursor = strconv.FormatInt(resp.Events[n-1].ID, 10)
	}
	return page, nil
}

// GetAccountsForAddress returns the accounts the address is a member of.
func (c *Client) GetAccountsForAddress(ctx context.Context, address string) ([]string, error) {
	var resp model.AccountsResponse
	if err := c.get(ctx, "/accounts/"+url.PathEscape(address), nil, &resp); err != nil {
		return nil, fmt.Errorf("get accounts for address: %w", err)
	}
	if resp.Accounts == nil {
		return []string{}, nil
	}
	return resp.Accounts, nil
}

// GetAccountTransactions returns the aggregated transaction summaries of an account.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID string) ([]model.TransactionSummary, error) {
	var resp model.TransactionsResponse
	if err := c.get(ctx, "/transactions/"+url.PathEscape(accountID), nil, &resp); err != nil {
		return nil, fmt.Errorf("get account transactions: %w", err)
	}
	if resp.Transactions == nil {
		return []model.TransactionSummary{}, nil
	}
	return resp.Transactions, nil
}

func decodeEvents(raw []model.RawEvent) ([]model.Event, error) {
	out := make([]model.Event, 0, len(raw))
	for _, record := range raw {
		ev, err := model.DecodeEvent(record)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("indexer response", zap.String("url", endpoint), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
