// Package cache holds list query results per table and drops them when the
// change feed reports a write to that table.
package cache

import (
	"context"
	"sync"

	"factory-admin/internal/feed"

	"go.uber.org/zap"
)

type entry struct {
	value   any
	version uint64
	valid   bool
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	hub     feed.Subscriber
	handle  *feed.Handle
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{entries: make(map[string]*entry), logger: logger}
}

// Attach invalidates entries for every change published on hub until Detach.
func (c *Cache) Attach(hub feed.Subscriber) {
	h := hub.Subscribe(feed.AllTables, func(ch feed.Change) { c.Invalidate(ch.Table) })

	c.mu.Lock()
	c.hub = hub
	c.handle = &h
	c.mu.Unlock()
}

func (c *Cache) Detach() {
	c.mu.Lock()
	hub, h := c.hub, c.handle
	c.hub, c.handle = nil, nil
	c.mu.Unlock()

	if h != nil {
		hub.Unsubscribe(*h)
	}
}

// Subscribe registers fn for changes on table through the attached hub. The
// table's entry is dropped before fn runs, so a reload started from fn never
// reads the stale result. Without an attached hub fn never runs and the
// returned handle is inert.
func (c *Cache) Subscribe(table string, fn func(feed.Change)) feed.Handle {
	c.mu.Lock()
	hub := c.hub
	c.mu.Unlock()

	if hub == nil {
		c.logger.Warn("cache not attached to a change feed", zap.String("table", table))
		return feed.Handle{}
	}
	return hub.Subscribe(table, func(ch feed.Change) {
		c.Invalidate(ch.Table)
		fn(ch)
	})
}

func (c *Cache) Unsubscribe(h feed.Handle) {
	c.mu.Lock()
	hub := c.hub
	c.mu.Unlock()

	if hub != nil {
		hub.Unsubscribe(h)
	}
}

// Invalidate drops the cached result for table. AllTables drops everything.
func (c *Cache) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table == feed.AllTables {
		for _, e := range c.entries {
			e.version++
			e.valid = false
		}
		return
	}
	e := c.entry(table)
	e.version++
	e.valid = false
	c.logger.Debug("cache invalidated", zap.String("table", table))
}

// Cached reports whether table currently has a valid entry.
func (c *Cache) Cached(table string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[table]
	return ok && e.valid
}

func (c *Cache) entry(table string) *entry {
	e, ok := c.entries[table]
	if !ok {
		e = &entry{}
		c.entries[table] = e
	}
	return e
}

// Load returns the cached rows of table, calling fetch on a miss. A result
// fetched while the table was invalidated is returned but not stored.
func Load[T any](ctx context.Context, c *Cache, table string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	e := c.entry(table)
	if e.valid {
		rows, ok := e.value.([]T)
		if ok {
			c.mu.Unlock()
			return clone(rows), nil
		}
	}
	version := e.version
	c.mu.Unlock()

	rows, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if e.version == version {
		e.value = clone(rows)
		e.valid = true
	}
	c.mu.Unlock()
	return rows, nil
}

func clone[T any](rows []T) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
