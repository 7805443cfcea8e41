package cache

import (
	"context"
	"errors"
	"testing"

	"factory-admin/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(rows []string) (func(context.Context) ([]string, error), *int) {
	calls := 0
	return func(context.Context) ([]string, error) {
		calls++
		return rows, nil
	}, &calls
}

func TestLoadCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	fetch, calls := counter([]string{"a", "b"})

	rows, err := Load(ctx, c, "suppliers", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows)

	_, err = Load(ctx, c, "suppliers", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.True(t, c.Cached("suppliers"))

	c.Invalidate("suppliers")
	assert.False(t, c.Cached("suppliers"))

	_, err = Load(ctx, c, "suppliers", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	_, err := Load(ctx, c, "defects", func(context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	})
	assert.EqualError(t, err, "connection refused")
	assert.False(t, c.Cached("defects"))
}

func TestInvalidationDuringFetchDropsResult(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	rows, err := Load(ctx, c, "products", func(context.Context) ([]string, error) {
		c.Invalidate("products")
		return []string{"stale"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, rows)
	assert.False(t, c.Cached("products"))
}

func TestCachedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	fetch, _ := counter([]string{"a"})

	rows, err := Load(ctx, c, "customers", fetch)
	require.NoError(t, err)
	rows[0] = "mutated"

	again, err := Load(ctx, c, "customers", fetch)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0])
}

func TestAttachedHubInvalidatesByTable(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub(nil)
	c := New(nil)
	c.Attach(hub)
	defer c.Detach()

	fetch, _ := counter([]string{"x"})
	_, _ = Load(ctx, c, "suppliers", fetch)
	_, _ = Load(ctx, c, "customers", fetch)

	hub.Publish(feed.Change{Table: "suppliers", Action: feed.ActionInsert, ID: 1})

	assert.False(t, c.Cached("suppliers"))
	assert.True(t, c.Cached("customers"))
}

func TestSubscribeInvalidatesBeforeCallback(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub(nil)
	c := New(nil)
	c.Attach(hub)
	defer c.Detach()

	fetch, _ := counter([]string{"x"})
	_, _ = Load(ctx, c, "employees", fetch)

	var cachedInCallback bool
	h := c.Subscribe("employees", func(feed.Change) {
		cachedInCallback = c.Cached("employees")
	})
	hub.Publish(feed.Change{Table: "employees", Action: feed.ActionUpdate, ID: 4})
	c.Unsubscribe(h)

	assert.False(t, cachedInCallback)
	assert.Equal(t, 0, hub.Subscribers("employees"))
}

func TestDetachStopsInvalidation(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub(nil)
	c := New(nil)
	c.Attach(hub)
	c.Detach()

	fetch, _ := counter([]string{"x"})
	_, _ = Load(ctx, c, "defects", fetch)
	hub.Publish(feed.Change{Table: "defects", Action: feed.ActionDelete, ID: 2})

	assert.True(t, c.Cached("defects"))
	assert.Equal(t, 0, hub.Subscribers(feed.AllTables))
}

func TestSubscribeWithoutHubIsInert(t *testing.T) {
	c := New(nil)

	var h feed.Handle
	require.NotPanics(t, func() {
		h = c.Subscribe("employees", func(feed.Change) {})
	})
	assert.Equal(t, feed.Handle{}, h)
	assert.NotPanics(t, func() { c.Unsubscribe(h) })
}
