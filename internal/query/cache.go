package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long a fetched entry is served without refetching.
const DefaultStaleTime = time.Second

// ErrDisabled is returned by Get for an empty key.
var ErrDisabled = errors.New("query disabled: empty key")

// Update is sent to subscribers when an entry is refreshed or invalidated.
type Update struct {
	Key         string    `json:"key"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Invalidated bool      `json:"invalidated,omitempty"`
}

type Options struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

// Cache serves query results from a Store. Concurrent fetches of one key share
// a single upstream call. Failed fetches never reach the store and are not
// retried; the last error of a key is kept until a fetch succeeds or the key
// is invalidated.
type Cache struct {
	store        Store
	staleTime    time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
	group        singleflight.Group

	mu       sync.Mutex
	subs     map[string]map[chan Update]struct{}
	failures map[string]failure
}

type failure struct {
	err error
	at  time.Time
}

func New(store Store, opts Options) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		store:        store,
		staleTime:    opts.StaleTime,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		logger:       opts.Logger,
		subs:         make(map[string]map[chan Update]struct{}),
		failures:     make(map[string]failure),
	}
}

// Get returns the cached value for key while it is fresh, otherwise fetches,
// stores and returns a new one.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, time.Time, error) {
	var zero T
	if key.Empty() {
		return zero, time.Time{}, ErrDisabled
	}

	if entry, ok := c.load(ctx, key); ok && c.fresh(entry) {
		v, err := decode[T](entry)
		if err == nil {
			return v, entry.FetchedAt, nil
		}
		c.logger.Warn("drop undecodable cache entry", zap.String("key", key.String()), zap.Error(err))
	}

	entry, err := c.fetch(ctx, key, encoder(fetch))
	if err != nil {
		return zero, time.Time{}, err
	}
	v, err := decode[T](entry)
	if err != nil {
		return zero, time.Time{}, err
	}
	return v, entry.FetchedAt, nil
}

// Peek never blocks on the upstream. It returns the cached value, even when
// stale, the last fetch error when nothing is cached, or a pending state. A
// background fetch starts for missing or stale entries; after a failure the
// next one waits out the stale time.
func Peek[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) State[T] {
	if key.Empty() {
		return State[T]{Status: StatusDisabled}
	}

	entry, ok := c.load(ctx, key)
	if ok {
		if !c.fresh(entry) {
			c.refresh(ctx, key, encoder(fetch))
		}
		v, err := decode[T](entry)
		if err != nil {
			return State[T]{Status: StatusError, Err: err}
		}
		return State[T]{Status: StatusSuccess, Data: v, UpdatedAt: entry.FetchedAt}
	}

	if f, failed := c.lastFailure(key); failed {
		if c.now().Sub(f.at) >= c.staleTime {
			c.refresh(ctx, key, encoder(fetch))
		}
		return State[T]{Status: StatusError, Err: f.err, UpdatedAt: f.at}
	}
	c.refresh(ctx, key, encoder(fetch))
	return State[T]{Status: StatusPending}
}

// Subscribe returns a channel receiving updates for any of keys. Slow readers
// miss intermediate updates, never the latest. Call cancel to stop.
func (c *Cache) Subscribe(keys ...Key) (<-chan Update, func()) {
	ch := make(chan Update, 1)
	names := make([]string, 0, len(keys))
	c.mu.Lock()
	for _, key := range keys {
		name := key.String()
		names = append(names, name)
		if c.subs[name] == nil {
			c.subs[name] = make(map[chan Update]struct{})
		}
		c.subs[name][ch] = struct{}{}
	}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			for _, name := range names {
				delete(c.subs[name], ch)
				if len(c.subs[name]) == 0 {
					delete(c.subs, name)
				}
			}
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

// Invalidate drops key so the next read refetches.
func (c *Cache) Invalidate(ctx context.Context, key Key) error {
	name := key.String()
	if err := c.store.Delete(ctx, name); err != nil {
		return err
	}
	c.clearFailure(name)
	c.notify(Update{Key: name, UpdatedAt: c.now(), Invalidated: true})
	return nil
}

// InvalidatePrefix drops every entry of endpoint.
func (c *Cache) InvalidatePrefix(ctx context.Context, endpoint string) error {
	names, err := c.store.Keys(ctx, endpointPrefix(endpoint))
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, names...); err != nil {
		return err
	}
	at := c.now()
	for _, name := range names {
		c.clearFailure(name)
		c.notify(Update{Key: name, UpdatedAt: at, Invalidated: true})
	}
	return nil
}

func (c *Cache) load(ctx context.Context, key Key) (Entry, bool) {
	entry, ok, err := c.store.Load(ctx, key.String())
	if err != nil {
		c.logger.Warn("cache load failed", zap.String("key", key.String()), zap.Error(err))
		return Entry{}, false
	}
	return entry, ok
}

func (c *Cache) lastFailure(key Key) (failure, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.failures[key.String()]
	return f, ok
}

func (c *Cache) recordFailure(name string, err error) {
	c.mu.Lock()
	c.failures[name] = failure{err: err, at: c.now()}
	c.mu.Unlock()
}

func (c *Cache) clearFailure(name string) {
	c.mu.Lock()
	delete(c.failures, name)
	c.mu.Unlock()
}

func (c *Cache) fresh(entry Entry) bool {
	return c.now().Sub(entry.FetchedAt) < c.staleTime
}

type rawFetch func(context.Context) (json.RawMessage, error)

func encoder[T any](fetch func(context.Context) (T, error)) rawFetch {
	return func(ctx context.Context) (json.RawMessage, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode query result: %w", err)
		}
		return data, nil
	}
}

func decode[T any](entry Entry) (T, error) {
	var v T
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		return v, fmt.Errorf("decode cache entry: %w", err)
	}
	return v, nil
}

// fetch runs one shared upstream call for key. The call outlives a cancelled
// caller so other waiters still get the result.
func (c *Cache) fetch(ctx context.Context, key Key, fetch rawFetch) (Entry, error) {
	name := key.String()
	ch := c.group.DoChan(name, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		data, err := fetch(fetchCtx)
		if err != nil {
			c.logger.Debug("query fetch failed", zap.String("key", name), zap.Error(err))
			c.recordFailure(name, err)
			return Entry{}, err
		}
		c.clearFailure(name)
		entry := Entry{Data: data, FetchedAt: c.now()}
		if err := c.store.Save(fetchCtx, name, entry); err != nil {
			c.logger.Warn("cache save failed", zap.String("key", name), zap.Error(err))
		}
		c.notify(Update{Key: name, UpdatedAt: entry.FetchedAt})
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, res.Err
		}
		return res.Val.(Entry), nil
	}
}

func (c *Cache) refresh(ctx context.Context, key Key, fetch rawFetch) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := c.fetch(bg, key, fetch); err != nil {
			c.logger.Warn("background refresh failed", zap.String("key", key.String()), zap.Error(err))
		}
	}()
}

func (c *Cache) notify(update Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs[update.Key] {
		select {
		case ch <- update:
		default:
			// Replace the pending update with the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- update:
			default:
			}
		}
	}
}
