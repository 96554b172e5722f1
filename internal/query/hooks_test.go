package query

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"isafeDashboard/internal/bcs"
	"isafeDashboard/internal/events"
	"isafeDashboard/internal/model"
)

type stubIndexer struct {
	mu     sync.Mutex
	calls  map[string]int
	events []model.Event
	err    error
}

func (s *stubIndexer) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

func (s *stubIndexer) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubIndexer) GetAccountEvents(ctx context.Context, address string) ([]model.Event, error) {
	s.record("events")
	return s.events, s.err
}

func (s *stubIndexer) GetAccountsForAddress(ctx context.Context, address string) ([]string, error) {
	s.record("accounts")
	return []string{"0xacc0"}, s.err
}

func (s *stubIndexer) GetAccountTransactions(ctx context.Context, accountID string) ([]model.TransactionSummary, error) {
	s.record("transactions")
	return []model.TransactionSummary{{TransactionDigest: "d1", Status: model.StatusExecuted}}, s.err
}

type stubTxService struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubTxService) GetTransaction(ctx context.Context, digest string) (model.TransactionDetails, error) {
	s.mu.Lock()
	s.calls = append(s.calls, digest)
	s.mu.Unlock()
	if digest == "missing" {
		return model.TransactionDetails{}, errors.New("not found")
	}
	return model.TransactionDetails{Description: "desc " + digest}, nil
}

type stubChain struct{}

func (stubChain) Balance(ctx context.Context, address string) (model.Balance, error) {
	return model.Balance{CoinType: "0x2::iota::IOTA", TotalBalance: "42"}, nil
}

func sampleEvents() []model.Event {
	acct := bcs.MustParseAddress("0xacc0")
	alice := bcs.MustParseAddress("0xa11ce")
	bob := bcs.MustParseAddress("0xb0b")
	return []model.Event{
		{
			AccountAddress: acct.Hex(),
			FiredInTx:      "tx1",
			EventType:      events.TagAccountCreated,
			Data:           events.AccountCreated{Account: acct, Creator: alice, Members: []bcs.Address{alice, bob}, Weights: []uint64{3, 2}, Threshold: 4},
			Timestamp:      time.Unix(1700000000, 0).UTC(),
		},
	}
}

func newTestHooks(indexer *stubIndexer, tx TxServiceAPI, chain BalanceAPI) *Hooks {
	return NewHooks(New(NewMemoryStore(), Options{StaleTime: time.Minute}), indexer, tx, chain)
}

func TestHooksDisabledOnEmptyKey(t *testing.T) {
	indexer := &stubIndexer{}
	hooks := newTestHooks(indexer, &stubTxService{}, stubChain{})
	ctx := context.Background()

	if st := hooks.Events(ctx, ""); st.Status != StatusDisabled {
		t.Fatalf("events: expected disabled, got %s", st.Status)
	}
	if st := hooks.Accounts(ctx, ""); st.Status != StatusDisabled {
		t.Fatalf("accounts: expected disabled, got %s", st.Status)
	}
	if st := hooks.Transactions(ctx, ""); st.Status != StatusDisabled {
		t.Fatalf("transactions: expected disabled, got %s", st.Status)
	}
	if st := hooks.Members(ctx, ""); st.Status != StatusDisabled {
		t.Fatalf("members: expected disabled, got %s", st.Status)
	}
	if st := hooks.Balance(ctx, ""); st.Status != StatusDisabled {
		t.Fatalf("balance: expected disabled, got %s", st.Status)
	}
	if st := hooks.TransactionDetails(ctx, nil); st.Status != StatusDisabled {
		t.Fatalf("details: expected disabled, got %s", st.Status)
	}
	if len(indexer.calls) != 0 {
		t.Fatalf("expected no fetches, got %v", indexer.calls)
	}
}

func TestHooksMembersSharesEventsEntry(t *testing.T) {
	indexer := &stubIndexer{events: sampleEvents()}
	hooks := newTestHooks(indexer, nil, nil)
	ctx := context.Background()

	members := hooks.Members(ctx, "0xacc0")
	if members.Status != StatusSuccess {
		t.Fatalf("members: %s %v", members.Status, members.Err)
	}
	want := []model.Member{
		{Address: bcs.MustParseAddress("0xa11ce").Hex(), Weight: 3},
		{Address: bcs.MustParseAddress("0xb0b").Hex(), Weight: 2},
	}
	if !reflect.DeepEqual(members.Data, want) {
		t.Fatalf("unexpected members: %+v", members.Data)
	}

	evs := hooks.Events(ctx, "0xacc0")
	if evs.Status != StatusSuccess || len(evs.Data) != 1 {
		t.Fatalf("events: %+v", evs)
	}
	if !reflect.DeepEqual(evs.Data[0].Data, sampleEvents()[0].Data) {
		t.Fatalf("cached event payload lost its type: %#v", evs.Data[0].Data)
	}
	if got := indexer.count("events"); got != 1 {
		t.Fatalf("expected one events fetch, got %d", got)
	}
}

func TestHooksErrorState(t *testing.T) {
	boom := errors.New("indexer down")
	hooks := newTestHooks(&stubIndexer{err: boom}, nil, nil)

	st := hooks.Transactions(context.Background(), "0xacc0")
	if st.Status != StatusError || !errors.Is(st.Err, boom) {
		t.Fatalf("expected error state, got %s %v", st.Status, st.Err)
	}
	if st := hooks.Members(context.Background(), "0xacc0"); st.Status != StatusError {
		t.Fatalf("derived hook should carry the error, got %s", st.Status)
	}
}

func TestHooksBalance(t *testing.T) {
	hooks := newTestHooks(&stubIndexer{}, nil, stubChain{})
	st := hooks.Balance(context.Background(), "0xacc0")
	if st.Status != StatusSuccess || st.Data.TotalBalance != "42" {
		t.Fatalf("unexpected balance state: %+v", st)
	}

	noChain := newTestHooks(&stubIndexer{}, nil, nil)
	if st := noChain.Balance(context.Background(), "0xacc0"); st.Status != StatusDisabled {
		t.Fatalf("expected disabled without chain client, got %s", st.Status)
	}
}

func TestHooksTransactionDetails(t *testing.T) {
	tx := &stubTxService{}
	hooks := newTestHooks(&stubIndexer{}, tx, nil)
	ctx := context.Background()

	st := hooks.TransactionDetails(ctx, []string{"d2", "d1", "d2"})
	if st.Status != StatusSuccess {
		t.Fatalf("details: %s %v", st.Status, st.Err)
	}
	got := []string{st.Data[0].Description, st.Data[1].Description, st.Data[2].Description}
	if !reflect.DeepEqual(got, []string{"desc d2", "desc d1", "desc d2"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if len(tx.calls) != 2 {
		t.Fatalf("expected one request per unique digest, got %v", tx.calls)
	}

	again := hooks.TransactionDetails(ctx, []string{"d1", "d2"})
	if again.Status != StatusSuccess || len(tx.calls) != 2 {
		t.Fatalf("expected the same digest set to hit the cache, calls=%v", tx.calls)
	}

	failed := hooks.TransactionDetails(ctx, []string{"d1", "missing"})
	if failed.Status != StatusError {
		t.Fatalf("expected error state, got %s", failed.Status)
	}
}

func TestHooksPeeking(t *testing.T) {
	indexer := &stubIndexer{events: sampleEvents()}
	hooks := newTestHooks(indexer, nil, nil)
	ctx := context.Background()

	updates, cancel := hooks.Cache().Subscribe(NewKey(EndpointAccounts, "0xa11ce"))
	defer cancel()

	if st := hooks.Peeking().Accounts(ctx, "0xa11ce"); st.Status != StatusPending {
		t.Fatalf("expected pending on cold cache, got %s", st.Status)
	}
	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatalf("background fetch did not complete")
	}
	if st := hooks.Peeking().Accounts(ctx, "0xa11ce"); st.Status != StatusSuccess {
		t.Fatalf("expected success on warm cache, got %s", st.Status)
	}
}

func TestHooksRefresh(t *testing.T) {
	indexer := &stubIndexer{events: sampleEvents()}
	hooks := newTestHooks(indexer, nil, nil)
	ctx := context.Background()

	hooks.Events(ctx, "0xacc0")
	if err := hooks.Refresh(ctx, "0xacc0"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	hooks.Events(ctx, "0xacc0")
	if got := indexer.count("events"); got != 2 {
		t.Fatalf("expected refetch after refresh, got %d fetches", got)
	}
}
