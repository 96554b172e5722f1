package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"

	"isafeDashboard/internal/model"
)

// Client wraps a JSON-RPC connection to an IOTA node.
type Client struct {
	rpcClient *rpc.Client

	mu      sync.RWMutex
	chainID string
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{rpcClient: rpcClient}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Balance returns the balance of the default coin type owned by address.
func (c *Client) Balance(ctx context.Context, address string) (model.Balance, error) {
	var balance model.Balance
	if err := c.rpcClient.CallContext(ctx, &balance, "iotax_getBalance", address, nil); err != nil {
		return model.Balance{}, fmt.Errorf("get balance %s: %w", address, err)
	}
	return balance, nil
}

// ChainIdentifier returns the node's chain identifier, cached after the first call.
func (c *Client) ChainIdentifier(ctx context.Context) (string, error) {
	c.mu.RLock()
	id := c.chainID
	c.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	if err := c.rpcClient.CallContext(ctx, &id, "iota_getChainIdentifier"); err != nil {
		return "", fmt.Errorf("get chain identifier: %w", err)
	}

	c.mu.Lock()
	c.chainID = id
	c.mu.Unlock()

	return id, nil
}
