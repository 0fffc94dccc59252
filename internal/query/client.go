// Package query is a keyed read cache with write-then-invalidate semantics.
//
// Reads go through Await, which blocks up to the context deadline, or Peek,
// which never fetches. At most one fetch per key is in flight. Mutations never
// write cached values; they call Invalidate and the next read re-fetches.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status of a cached read.
type Status int

const (
	// StatusIdle: the query has no key yet and is not runnable.
	StatusIdle Status = iota
	StatusPending
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

// Snapshot is the state of one query at one instant.
type Snapshot[T any] struct {
	Status Status
	Value  T
	Err    error
	// Fetching is true while a fetch is in flight, including a background
	// refetch of a value that is still being shown.
	Fetching  bool
	UpdatedAt time.Time
}

type Options struct {
	// StaleAfter is how long a successful value is served without a
	// refetch. Zero refetches on every read.
	StaleAfter time.Duration
	// EvictAfter drops entries nobody read for this long. Zero keeps them.
	EvictAfter time.Duration
}

type entry struct {
	key       Key
	value     any
	hasValue  bool
	err       error
	updatedAt time.Time
	lastRead  time.Time

	// gen is bumped by Invalidate; a fetch that started under an older gen
	// leaves the entry stale.
	gen      uint64
	stale    bool
	inflight chan struct{}
}

type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	fetches       metric.Int64Counter
	invalidations metric.Int64Counter
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	meter := otel.Meter("github.com/Alijeyrad/salon_storefront/internal/query")
	fetches, _ := meter.Int64Counter("storefront_query_fetches_total",
		metric.WithDescription("Backend reads issued by the query cache"))
	invalidations, _ := meter.Int64Counter("storefront_query_invalidations_total",
		metric.WithDescription("Cached reads marked stale after a write"))

	return &Client{
		entries:       map[string]*entry{},
		opts:          opts,
		logger:        logger,
		now:           time.Now,
		fetches:       fetches,
		invalidations: invalidations,
	}
}

type fetchFunc func(context.Context) (any, error)

// Await starts a fetch when the entry is missing, stale or failed, then
// waits until the key settles or ctx is done.
// If the key was invalidated while its fetch was in flight, Await fetches
// again so the result always postdates the latest invalidation.
func Await[T any](ctx context.Context, c *Client, key Key, fetch func(context.Context) (T, error)) Snapshot[T] {
	f := erase(fetch)
	for {
		done := c.ensure(ctx, key, f)
		if done == nil {
			break
		}
		select {
		case <-done:
		case <-ctx.Done():
			return snapshotOf[T](c, key)
		}
		if !c.invalidatedSince(key) {
			break
		}
	}
	return snapshotOf[T](c, key)
}

// Peek returns the current state without triggering anything.
func Peek[T any](c *Client, key Key) Snapshot[T] {
	return snapshotOf[T](c, key)
}

func erase[T any](fetch func(context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// ensure starts a fetch if needed and returns the channel of the fetch in
// flight, or nil when the cached value can be served as is.
func (c *Client) ensure(ctx context.Context, key Key, fetch fetchFunc) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key.String()]
	if !ok {
		e = &entry{key: key}
		c.entries[key.String()] = e
	}
	e.lastRead = now

	if e.inflight != nil {
		return e.inflight
	}
	if e.hasValue && e.err == nil && !e.stale && now.Sub(e.updatedAt) < c.opts.StaleAfter {
		return nil
	}

	done := make(chan struct{})
	e.inflight = done

	// The fetch outlives the request that triggered it; a caller that stops
	// waiting only discards its interest, the result still lands here.
	fctx := context.WithoutCancel(ctx)
	go c.run(fctx, e, e.gen, fetch, done)
	return done
}

func (c *Client) run(ctx context.Context, e *entry, gen uint64, fetch fetchFunc, done chan struct{}) {
	v, err := fetch(ctx)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query", e.key[0]),
		attribute.String("outcome", outcome),
	))

	c.mu.Lock()
	if err != nil {
		e.err = err
		c.logger.DebugContext(ctx, "query failed", "key", e.key, "err", err)
	} else {
		e.value = v
		e.hasValue = true
		e.err = nil
	}
	e.updatedAt = c.now()
	e.stale = e.gen != gen
	e.inflight = nil
	c.mu.Unlock()

	close(done)
}

func (c *Client) invalidatedSince(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	return ok && e.inflight == nil && e.stale
}

// Invalidate marks every entry under prefix stale. Values stay visible until
// the re-fetch replaces them. It returns the number of entries marked.
func (c *Client) Invalidate(ctx context.Context, prefix Key) int {
	c.mu.Lock()
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.gen++
			e.stale = true
			n++
		}
	}
	c.mu.Unlock()

	if n > 0 {
		c.invalidations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("query", prefix.String())))
	}
	c.logger.DebugContext(ctx, "queries invalidated", "prefix", prefix, "count", n)
	return n
}

// Sweep drops entries that were not read within EvictAfter and have no
// fetch in flight.
func (c *Client) Sweep(now time.Time) int {
	if c.opts.EvictAfter <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.inflight == nil && now.Sub(e.lastRead) > c.opts.EvictAfter {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len reports the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func snapshotOf[T any](c *Client, key Key) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot[T]{Status: StatusPending}
	}

	s := Snapshot[T]{Fetching: e.inflight != nil, UpdatedAt: e.updatedAt}
	switch {
	case e.inflight != nil && (!e.hasValue || e.err != nil):
		s.Status = StatusPending
	case e.err != nil:
		s.Status = StatusError
		s.Err = e.err
	case e.hasValue:
		s.Status = StatusSuccess
	default:
		s.Status = StatusPending
	}
	if e.hasValue && s.Status == StatusSuccess {
		if v, ok := e.value.(T); ok {
			s.Value = v
		}
	}
	return s
}
