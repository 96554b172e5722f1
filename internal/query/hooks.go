package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"isafeDashboard/internal/account"
	"isafeDashboard/internal/model"
)

// Status is the lifecycle of one hook read.
type Status int

const (
	StatusDisabled Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is what a view renders: data on success, the error otherwise.
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
}

type IndexerAPI interface {
	GetAccountEvents(ctx context.Context, address string) ([]model.Event, error)
	GetAccountsForAddress(ctx context.Context, address string) ([]string, error)
	GetAccountTransactions(ctx context.Context, accountID string) ([]model.TransactionSummary, error)
}

type TxServiceAPI interface {
	GetTransaction(ctx context.Context, digest string) (model.TransactionDetails, error)
}

type BalanceAPI interface {
	Balance(ctx context.Context, address string) (model.Balance, error)
}

// Hooks binds the dashboard's reads to the cache. A nil tx-service or chain
// client disables the hooks that need it.
type Hooks struct {
	cache   *Cache
	indexer IndexerAPI
	tx      TxServiceAPI
	chain   BalanceAPI
	peek    bool

	detailsParallelism int
}

func NewHooks(cache *Cache, indexer IndexerAPI, tx TxServiceAPI, chain BalanceAPI) *Hooks {
	return &Hooks{cache: cache, indexer: indexer, tx: tx, chain: chain, detailsParallelism: 8}
}

// Peeking returns hooks that answer from the cache without waiting for the
// upstream.
func (h *Hooks) Peeking() *Hooks {
	cp := *h
	cp.peek = true
	return &cp
}

func (h *Hooks) Cache() *Cache {
	return h.cache
}

func run[T any](ctx context.Context, h *Hooks, key Key, fetch func(context.Context) (T, error)) State[T] {
	if key.Empty() {
		return State[T]{Status: StatusDisabled}
	}
	if h.peek {
		return Peek(ctx, h.cache, key, fetch)
	}
	v, at, err := Get(ctx, h.cache, key, fetch)
	if err != nil {
		return State[T]{Status: StatusError, Err: err}
	}
	return State[T]{Status: StatusSuccess, Data: v, UpdatedAt: at}
}

func (h *Hooks) Events(ctx context.Context, address string) State[[]model.Event] {
	return run(ctx, h, NewKey(EndpointEvents, address), func(ctx context.Context) ([]model.Event, error) {
		return h.indexer.GetAccountEvents(ctx, address)
	})
}

func (h *Hooks) Accounts(ctx context.Context, address string) State[[]string] {
	return run(ctx, h, NewKey(EndpointAccounts, address), func(ctx context.Context) ([]string, error) {
		return h.indexer.GetAccountsForAddress(ctx, address)
	})
}

func (h *Hooks) Transactions(ctx context.Context, accountID string) State[[]model.TransactionSummary] {
	return run(ctx, h, NewKey(EndpointTransactions, accountID), func(ctx context.Context) ([]model.TransactionSummary, error) {
		return h.indexer.GetAccountTransactions(ctx, accountID)
	})
}

// Account replays the cached events of accountID into its current state.
func (h *Hooks) Account(ctx context.Context, accountID string) State[account.State] {
	return derive(h.Events(ctx, accountID), account.Replay)
}

// Members is the current member list of accountID, in join order.
func (h *Hooks) Members(ctx context.Context, accountID string) State[[]model.Member] {
	return derive(h.Account(ctx, accountID), func(st account.State) ([]model.Member, error) {
		return st.Members, nil
	})
}

func (h *Hooks) Balance(ctx context.Context, address string) State[model.Balance] {
	if h.chain == nil {
		return State[model.Balance]{Status: StatusDisabled}
	}
	return run(ctx, h, NewKey(EndpointBalance, address), func(ctx context.Context) (model.Balance, error) {
		return h.chain.Balance(ctx, address)
	})
}

// TransactionDetails looks up each digest in the tx-service and returns the
// details in the order of digests.
func (h *Hooks) TransactionDetails(ctx context.Context, digests []string) State[[]model.TransactionDetails] {
	if h.tx == nil {
		return State[[]model.TransactionDetails]{Status: StatusDisabled}
	}
	key := DigestSetKey(EndpointTransactionDetails, digests)
	byDigest := run(ctx, h, key, func(ctx context.Context) (map[string]model.TransactionDetails, error) {
		return h.fetchDetails(ctx, key.Params)
	})
	return derive(byDigest, func(m map[string]model.TransactionDetails) ([]model.TransactionDetails, error) {
		out := make([]model.TransactionDetails, len(digests))
		for i, digest := range digests {
			out[i] = m[digest]
		}
		return out, nil
	})
}

func (h *Hooks) fetchDetails(ctx context.Context, digests []string) (map[string]model.TransactionDetails, error) {
	results := make([]model.TransactionDetails, len(digests))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.detailsParallelism)
	for i, digest := range digests {
		i, digest := i, digest
		g.Go(func() error {
			details, err := h.tx.GetTransaction(ctx, digest)
			if err != nil {
				return err
			}
			results[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]model.TransactionDetails, len(digests))
	for i, digest := range digests {
		out[digest] = results[i]
	}
	return out, nil
}

// Refresh invalidates every cached read of accountID.
func (h *Hooks) Refresh(ctx context.Context, accountID string) error {
	for _, key := range AccountKeys(accountID) {
		if err := h.cache.Invalidate(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// AccountKeys lists the cache keys holding reads of accountID.
func AccountKeys(accountID string) []Key {
	return []Key{
		NewKey(EndpointEvents, accountID),
		NewKey(EndpointTransactions, accountID),
		NewKey(EndpointBalance, accountID),
	}
}

func derive[A, B any](in State[A], fn func(A) (B, error)) State[B] {
	out := State[B]{Status: in.Status, Err: in.Err, UpdatedAt: in.UpdatedAt}
	if in.Status != StatusSuccess {
		return out
	}
	v, err := fn(in.Data)
	if err != nil {
		return State[B]{Status: StatusError, Err: err, UpdatedAt: in.UpdatedAt}
	}
	out.Data = v
	return out
}
