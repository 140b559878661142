package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := Record{
		ID:         "hello-world",
		Collection: "posts",
		Path:       "posts/hello-world.md",
		Data:       map[string]any{"title": "Hello World", "draft": false},
	}
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "posts", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Data["title"])
	assert.Equal(t, "posts/hello-world.md", got.Path)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "posts", "missing")
	assert.True(t, IsNotFound(err))
}

func TestPutRequiresID(t *testing.T) {
	s := newTestStore(t)
	err := s.Put(context.Background(), Record{Path: "a.md"})
	assert.Error(t, err)
}

func TestPutReplacesDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ID: "a", Collection: "posts", Path: "a.md", Data: map[string]any{"v": float64(1)}}))
	require.NoError(t, s.Put(ctx, Record{ID: "a", Collection: "posts", Path: "a.md", Data: map[string]any{"v": float64(2)}}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "posts", "a")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got.Data["v"])
}

func TestListOrderingAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b", "d"} {
		require.NoError(t, s.Put(ctx, Record{ID: id, Collection: "posts", Path: id + ".md", Data: map[string]any{}}))
	}

	all, err := s.List(ctx, "posts", 0, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "d", all[3].ID)

	page, err := s.List(ctx, "posts", 2, "a")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.Equal(t, "c", page[1].ID)
}

func TestCollections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ID: "a", Collection: "posts", Path: "a.md", Data: map[string]any{}}))
	require.NoError(t, s.Put(ctx, Record{ID: "b", Collection: "pages", Path: "b.md", Data: map[string]any{}}))

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pages", "posts"}, names)
}

func TestResetDestroysAllRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ID: "a", Collection: "posts", Path: "a.md", Data: map[string]any{}}))
	require.NoError(t, s.Reset(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConcurrentPuts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Put(ctx, Record{ID: fmt.Sprintf("rec-%02d", i), Collection: "posts", Path: "p.md", Data: map[string]any{}})
		}(i)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 32, n)
}
