package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(clock *fakeClock) *Cache {
	return New(NewMemoryStore(), Options{StaleTime: time.Second, Now: clock.Now})
}

func TestGetServesFreshEntry(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := NewKey(EndpointEvents, "0xacc0")

	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		n := atomic.AddInt32(&calls, 1)
		return []string{"v", string(rune('0' + n))}, nil
	}

	first, at, err := Get(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !at.Equal(clock.Now()) {
		t.Fatalf("unexpected fetch time: %s", at)
	}

	clock.Advance(500 * time.Millisecond)
	second, _, err := Get(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 1 || second[1] != first[1] {
		t.Fatalf("expected cached value, calls=%d value=%v", calls, second)
	}

	clock.Advance(time.Second)
	third, _, err := Get(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 2 || third[1] != "2" {
		t.Fatalf("expected refetch after stale time, calls=%d value=%v", calls, third)
	}
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := NewKey(EndpointAccounts, "0xa11ce")
	boom := errors.New("indexer down")

	var calls int32
	_, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error unmodified, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retry, got %d calls", calls)
	}

	v, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Fatalf("expected refetch after error, got %d %v", v, err)
	}
	if calls != 2 {
		t.Fatalf("expected two calls, got %d", calls)
	}
}

func TestGetDisabledKey(t *testing.T) {
	cache := newTestCache(newFakeClock())
	for _, key := range []Key{NewKey(EndpointEvents, ""), NewKey(EndpointEvents), {}} {
		_, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) {
			t.Fatalf("fetch must not run for %v", key)
			return 0, nil
		})
		if !errors.Is(err, ErrDisabled) {
			t.Fatalf("expected ErrDisabled for %v, got %v", key, err)
		}
	}
}

func TestGetDeduplicatesConcurrentFetches(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := NewKey(EndpointTransactions, "0xacc0")

	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = Get(context.Background(), cache, key, fetch)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
	for i := range results {
		if errs[i] != nil || results[i] != "shared" {
			t.Fatalf("caller %d: %q %v", i, results[i], errs[i])
		}
	}
}

func TestGetCallerCancel(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := NewKey(EndpointBalance, "0xacc0")

	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := Get(ctx, cache, key, func(ctx context.Context) (int, error) {
			<-release
			return 1, nil
		})
		done <- err
	}()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)
}

func TestSubscribeNotifiesOnFetchAndInvalidate(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := NewKey(EndpointEvents, "0xacc0")
	other := NewKey(EndpointEvents, "0xb0b")

	updates, cancel := cache.Subscribe(key)
	defer cancel()

	if _, _, err := Get(context.Background(), cache, other, func(ctx context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("get other: %v", err)
	}
	select {
	case u := <-updates:
		t.Fatalf("unexpected update for other key: %+v", u)
	default:
	}

	if _, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("get: %v", err)
	}
	u := <-updates
	if u.Key != key.String() || u.Invalidated {
		t.Fatalf("unexpected update: %+v", u)
	}

	if err := cache.Invalidate(context.Background(), key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	u = <-updates
	if !u.Invalidated {
		t.Fatalf("expected invalidation update: %+v", u)
	}

	var calls int
	if _, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) { calls++; return 2, nil }); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected refetch after invalidate")
	}

	cancel()
	cancel()
}

func TestInvalidatePrefix(t *testing.T) {
	cache := newTestCache(newFakeClock())
	ctx := context.Background()
	for _, addr := range []string{"0x1", "0x2"} {
		if _, _, err := Get(ctx, cache, NewKey(EndpointEvents, addr), func(ctx context.Context) (int, error) { return 1, nil }); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if _, _, err := Get(ctx, cache, NewKey(EndpointAccounts, "0x1"), func(ctx context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := cache.InvalidatePrefix(ctx, EndpointEvents); err != nil {
		t.Fatalf("invalidate prefix: %v", err)
	}
	keys, _ := cache.store.Keys(ctx, "")
	if len(keys) != 1 || keys[0] != "accounts/0x1" {
		t.Fatalf("unexpected remaining keys: %v", keys)
	}
}

func TestPeek(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := NewKey(EndpointEvents, "0xacc0")

	updates, cancel := cache.Subscribe(key)
	defer cancel()

	fetch := func(ctx context.Context) (string, error) { return "loaded", nil }

	st := Peek(context.Background(), cache, key, fetch)
	if st.Status != StatusPending {
		t.Fatalf("expected pending, got %s", st.Status)
	}

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatalf("background fetch did not complete")
	}

	st = Peek(context.Background(), cache, key, fetch)
	if st.Status != StatusSuccess || st.Data != "loaded" {
		t.Fatalf("expected cached success, got %+v", st)
	}

	if st := Peek(context.Background(), cache, NewKey(EndpointEvents, ""), fetch); st.Status != StatusDisabled {
		t.Fatalf("expected disabled, got %s", st.Status)
	}
}

func TestPeekReportsLastFailure(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := NewKey(EndpointAccounts, "0xa11ce")
	boom := errors.New("indexer down")

	var calls int32
	var healthy atomic.Bool
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		if !healthy.Load() {
			return "", boom
		}
		return "loaded", nil
	}

	if st := Peek(context.Background(), cache, key, fetch); st.Status != StatusPending {
		t.Fatalf("expected pending, got %s", st.Status)
	}
	deadline := time.Now().Add(2 * time.Second)
	var st State[string]
	for {
		st = Peek(context.Background(), cache, key, fetch)
		if st.Status == StatusError {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("fetch error never surfaced, last status %s", st.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !errors.Is(st.Err, boom) {
		t.Fatalf("expected upstream error, got %v", st.Err)
	}
	failedCalls := atomic.LoadInt32(&calls)
	for i := 0; i < 5; i++ {
		if st := Peek(context.Background(), cache, key, fetch); st.Status != StatusError {
			t.Fatalf("expected error state to persist, got %s", st.Status)
		}
	}
	if n := atomic.LoadInt32(&calls); n != failedCalls {
		t.Fatalf("expected no refetch within the stale time, got %d calls after %d", n, failedCalls)
	}

	updates, cancel := cache.Subscribe(key)
	defer cancel()
	healthy.Store(true)
	clock.Advance(time.Second)
	if st := Peek(context.Background(), cache, key, fetch); st.Status != StatusError {
		t.Fatalf("expected error until the refetch lands, got %s", st.Status)
	}
	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatalf("refetch did not complete")
	}
	st = Peek(context.Background(), cache, key, fetch)
	if st.Status != StatusSuccess || st.Data != "loaded" {
		t.Fatalf("expected success after recovery, got %+v", st)
	}
}

func TestInvalidateClearsFailure(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := NewKey(EndpointEvents, "0xacc0")
	_, _, err := Get(context.Background(), cache, key, func(ctx context.Context) (int, error) {
		return 0, errors.New("indexer down")
	})
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if st := Peek(context.Background(), cache, key, func(ctx context.Context) (int, error) { return 1, nil }); st.Status != StatusError {
		t.Fatalf("expected recorded failure, got %s", st.Status)
	}
	if err := cache.Invalidate(context.Background(), key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, failed := cache.lastFailure(key); failed {
		t.Fatalf("expected failure cleared by invalidate")
	}
}

func TestDigestSetKey(t *testing.T) {
	a := DigestSetKey(EndpointTransactionDetails, []string{"b", "a", "b", ""})
	b := DigestSetKey(EndpointTransactionDetails, []string{"a", "b"})
	if a.String() != b.String() || a.String() != "transactionDetails/a,b" {
		t.Fatalf("unexpected keys: %s %s", a, b)
	}
	if !DigestSetKey(EndpointTransactionDetails, nil).Empty() {
		t.Fatalf("expected empty key for no digests")
	}
}
