package model

// EventsResponse is the body of GET /events/{address}. NextCursor is set only
// by paginated requests.
type EventsResponse struct {
	Events     []RawEvent `json:"events"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type AccountsResponse struct {
	Accounts []string `json:"accounts"`
}

type TransactionsResponse struct {
	Transactions []TransactionSummary `json:"transactions"`
}
