// Package querycache is a key-based request cache. Pages read through Fetch;
// mutations go through Cancel, Snapshot, Update, Restore and Invalidate so that
// optimistic writes never race with stale reads.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/fitcompare/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCanceled is returned to callers waiting on a fetch that was cancelled
// or whose result was superseded by a direct write.
var ErrCanceled = errors.New("query canceled")

// Key identifies a cached query, e.g. Key{"products", "list", "q=whey"}.
type Key []string

const sep = "\x1f"

func (k Key) String() string {
	return strings.Join(k, sep)
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	data      any
	hasData   bool
	stale     bool
	updatedAt time.Time
	// gen changes on every direct write or cancellation; a fetch started under
	// an older gen does not store its result.
	gen    uint64
	cancel context.CancelFunc
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime makes entries stale after d. Zero keeps entries fresh until invalidated.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithLogger sets the logger for hit/miss tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) { c.log = logger.OrNop(log) }
}

// Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the fresh cached value for key or runs fn to load it. Concurrent
// callers for the same key share one call. Cancelling ctx abandons the wait but
// not the shared call.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: %v holds %T, want %T", key, v, zero)
	}
	return t, nil
}

// Get returns the cached value for key of type T.
func Get[T any](c *Cache, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (c *Cache) fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(key)
	if e.hasData && !c.staleLocked(e) {
		data := e.data
		c.mu.Unlock()
		c.log.Debug("cache hit", zap.Strings("key", key))
		return data, nil
	}
	c.mu.Unlock()
	c.log.Debug("cache miss", zap.Strings("key", key))

	ch := c.group.DoChan(id, func() (any, error) {
		c.mu.Lock()
		e := c.entryLocked(key)
		gen := e.gen
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		e.cancel = cancel
		c.mu.Unlock()
		defer cancel()

		v, err := fn(fctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		// Clear replaces the entry map, so an entry that was dropped counts as
		// superseded even though its own gen matches.
		cur, ok := c.entries[id]
		if !ok || cur != e || e.gen != gen {
			if ok && cur.hasData {
				return cur.data, nil
			}
			return nil, ErrCanceled
		}
		e.cancel = nil
		if err != nil {
			return nil, err
		}
		e.data, e.hasData, e.stale, e.updatedAt = v, true, false, c.now()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the cached value for key regardless of staleness.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// Set stores v under key as fresh data. An in-flight fetch for key keeps running
// but its result is discarded.
func (c *Cache) Set(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	c.writeLocked(e, v)
}

// Update rewrites every cached value under prefix with fn. fn receives the
// entry's key and value and returns the replacement and whether it changed.
// fn must not modify the value it receives.
func (c *Cache) Update(prefix Key, fn func(key Key, v any) (any, bool)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if !e.hasData || !e.key.HasPrefix(prefix) {
			continue
		}
		if next, changed := fn(e.key, e.data); changed {
			c.writeLocked(e, next)
			n++
		}
	}
	return n
}

// Cancel aborts in-flight fetches under each prefix. Their results are discarded
// and their waiters receive ErrCanceled (or the data present at that point).
func (c *Cache) Cancel(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if matchAny(e.key, prefixes) {
			c.cancelLocked(id, e)
		}
	}
}

// Invalidate marks entries under each prefix stale so the next Fetch reloads them.
// Fetches already in flight are cancelled, since they may predate the change.
func (c *Cache) Invalidate(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if matchAny(e.key, prefixes) {
			c.cancelLocked(id, e)
			e.stale = true
		}
	}
	c.log.Debug("cache invalidated", zap.Int("prefixes", len(prefixes)))
}

// Clear drops every entry, cancelling in-flight fetches.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		c.cancelLocked(id, e)
	}
	c.entries = make(map[string]*entry)
}

// Snapshot is a point-in-time copy of the entries under a set of prefixes.
type Snapshot struct {
	prefixes []Key
	entries  map[string]snapEntry
}

type snapEntry struct {
	key     Key
	data    any
	hasData bool
	stale   bool
}

// Len returns the number of captured entries.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Snapshot captures the entries under each prefix for a later Restore.
func (c *Cache) Snapshot(prefixes ...Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{prefixes: prefixes, entries: make(map[string]snapEntry)}
	for id, e := range c.entries {
		if e.hasData && matchAny(e.key, prefixes) {
			snap.entries[id] = snapEntry{key: e.key, data: e.data, hasData: e.hasData, stale: e.stale}
		}
	}
	return snap
}

// Restore puts the captured entries back exactly. Entries under the snapshot's
// prefixes that did not exist at capture time lose their data.
func (c *Cache) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if !matchAny(e.key, snap.prefixes) {
			continue
		}
		s, ok := snap.entries[id]
		c.cancelLocked(id, e)
		if !ok {
			e.data, e.hasData = nil, false
			continue
		}
		e.data, e.hasData, e.stale = s.data, s.hasData, s.stale
	}
	for id, s := range snap.entries {
		if _, ok := c.entries[id]; !ok {
			c.entries[id] = &entry{key: s.key, data: s.data, hasData: s.hasData, stale: s.stale, updatedAt: c.now()}
		}
	}
}

func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...)}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) writeLocked(e *entry, v any) {
	e.data, e.hasData, e.stale, e.updatedAt = v, true, false, c.now()
	e.gen++
}

func (c *Cache) cancelLocked(id string, e *entry) {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	c.group.Forget(id)
}

func (c *Cache) staleLocked(e *entry) bool {
	if e.stale {
		return true
	}
	return c.staleTime > 0 && c.now().Sub(e.updatedAt) > c.staleTime
}

func matchAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}
