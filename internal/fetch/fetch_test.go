package fetch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahongtrung/phenomic/internal/server"
	"github.com/tahongtrung/phenomic/internal/store"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"collections", Query{}, "http://x/collections"},
		{"list", Query{Collection: "posts"}, "http://x/store/posts"},
		{"list with limit", Query{Collection: "posts", Limit: 5}, "http://x/store/posts?limit=5"},
		{"list paginated", Query{Collection: "posts", Limit: 5, After: "a"}, "http://x/store/posts?after=a&limit=5"},
		{"single", Query{Collection: "posts", ID: "hello"}, "http://x/store/posts/hello"},
		{"escaped", Query{Collection: "posts", ID: "a b"}, "http://x/store/posts/a%20b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := buildURL("http://x", tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoundTripAgainstContentServer(t *testing.T) {
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Put(ctx, store.Record{ID: "hello", Collection: "posts", Path: "hello.md", Data: map[string]any{"title": "Hello"}}))

	srv := server.New(st)
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() { _ = srv.Close() })

	fn := New(srv.Port())

	raw, err := fn(ctx, Query{Collection: "posts", ID: "hello"})
	require.NoError(t, err)
	var rec store.Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "Hello", rec.Data["title"])

	raw, err = fn(ctx, Query{Collection: "posts"})
	require.NoError(t, err)
	var list struct {
		List []store.Record `json:"list"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.List, 1)
}

func TestFailedFetchPropagates(t *testing.T) {
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := server.New(st)
	require.NoError(t, srv.Start(context.Background()))
	port := srv.Port()
	require.NoError(t, srv.Close())

	fn := New(port)
	_, err = fn(context.Background(), Query{Collection: "posts"})
	assert.Error(t, err)
}
