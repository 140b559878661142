package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahongtrung/phenomic/internal/store"
)

func startTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := New(st)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })
	return srv, st
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestServesRecords(t *testing.T) {
	srv, st := startTestServer(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Record{ID: "a", Collection: "posts", Path: "a.md", Data: map[string]any{"title": "A"}}))
	require.NoError(t, st.Put(ctx, store.Record{ID: "b", Collection: "posts", Path: "b.md", Data: map[string]any{"title": "B"}}))

	base := fmt.Sprintf("http://127.0.0.1:%d", srv.Port())

	var coll struct {
		Collections []string `json:"collections"`
	}
	status := getJSON(t, base+"/collections", &coll)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"posts"}, coll.Collections)

	var list struct {
		List []store.Record `json:"list"`
	}
	status = getJSON(t, base+"/store/posts", &list)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, list.List, 2)
	assert.Equal(t, "a", list.List[0].ID)

	var rec store.Record
	status = getJSON(t, base+"/store/posts/b", &rec)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B", rec.Data["title"])
}

func TestNotFound(t *testing.T) {
	srv, _ := startTestServer(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", srv.Port())

	var out map[string]string
	status := getJSON(t, base+"/store/posts/missing", &out)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, out["error"], "not found")
}

func TestInvalidLimit(t *testing.T) {
	srv, _ := startTestServer(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", srv.Port())

	var out map[string]string
	status := getJSON(t, base+"/store/posts?limit=nope", &out)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFreshPortPerServer(t *testing.T) {
	a, _ := startTestServer(t)
	b, _ := startTestServer(t)
	assert.NotZero(t, a.Port())
	assert.NotZero(t, b.Port())
	assert.NotEqual(t, a.Port(), b.Port())
}

func TestCloseIsIdempotent(t *testing.T) {
	srv, _ := startTestServer(t)
	require.NoError(t, srv.Close())
	require.NoError(t, srv.Close())
	assert.True(t, srv.Closed())

	_, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", srv.Port()))
	assert.Error(t, err)
}
