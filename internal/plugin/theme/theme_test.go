package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/fetch"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/server"
	"github.com/tahongtrung/phenomic/internal/store"
)

// stubFetch serves a fixed record set through the fetch contract.
func stubFetch(t *testing.T, records []store.Record) fetch.Func {
	t.Helper()

	byCollection := map[string][]store.Record{}
	for _, rec := range records {
		byCollection[rec.Collection] = append(byCollection[rec.Collection], rec)
	}

	// Payload shapes mirror the content server: enveloped collection and
	// list responses, bare single records.
	return func(_ context.Context, q fetch.Query) (json.RawMessage, error) {
		if q.Collection == "" {
			names := make([]string, 0, len(byCollection))
			for name := range byCollection {
				names = append(names, name)
			}
			return json.Marshal(map[string]any{"collections": names})
		}
		if q.ID == "" {
			return json.Marshal(map[string]any{"list": byCollection[q.Collection]})
		}
		for _, rec := range byCollection[q.Collection] {
			if rec.ID == q.ID {
				return json.Marshal(rec)
			}
		}
		return nil, fmt.Errorf("record %s/%s not found", q.Collection, q.ID)
	}
}

func testRecords() []store.Record {
	return []store.Record{
		{ID: "posts/hello", Collection: "posts", Path: "posts/Hello.md", Data: map[string]any{
			"title": "Hello",
			"body":  "<p>First post.</p>",
		}},
		{ID: "about", Collection: "pages", Path: "about.md", Data: map[string]any{
			"title": "About",
			"body":  "<p>About page.</p>",
		}},
	}
}

func testConfig(t *testing.T) *config.Config {
	return config.Default(t.TempDir())
}

func TestResolveURLsListsIndexAndRecords(t *testing.T) {
	cfg := testConfig(t)
	th := New(cfg)

	app, err := th.BuildForPrerendering(t.Context(), cfg)
	require.NoError(t, err)
	routes, err := th.Routes(app)
	require.NoError(t, err)

	urls, err := th.ResolveURLs(t.Context(), routes, stubFetch(t, testRecords()))
	require.NoError(t, err)

	assert.Contains(t, urls, "/")
	assert.Contains(t, urls, "/posts/posts/hello/")
	assert.Contains(t, urls, "/pages/about/")
	assert.Len(t, urls, 3)
}

func TestRoutesRejectsForeignApp(t *testing.T) {
	_, err := New(testConfig(t)).Routes("not an app")
	assert.Error(t, err)
}

func TestRenderStaticRecordPage(t *testing.T) {
	cfg := testConfig(t)
	th := New(cfg)

	files, err := th.RenderStatic(t.Context(), plugin.RenderRequest{
		Config:   cfg,
		Fetch:    stubFetch(t, testRecords()),
		Location: "/pages/about/",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "pages/about/index.html", files[0].Path)
	html := string(files[0].Contents)
	assert.Contains(t, html, "<title>About</title>")
	assert.Contains(t, html, "<p>About page.</p>")
}

func TestRenderStaticIndexLinksEveryRecord(t *testing.T) {
	cfg := testConfig(t)
	th := New(cfg)

	app, err := th.BuildForPrerendering(t.Context(), cfg)
	require.NoError(t, err)

	files, err := th.RenderStatic(t.Context(), plugin.RenderRequest{
		Config:   cfg,
		App:      app,
		Fetch:    stubFetch(t, testRecords()),
		Location: "/",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "index.html", files[0].Path)
	html := string(files[0].Contents)
	assert.Contains(t, html, `href="/posts/posts/hello/"`)
	assert.Contains(t, html, `href="/pages/about/"`)
	assert.Contains(t, html, ">Hello<")
}

func TestRenderStaticUnknownRecordFails(t *testing.T) {
	cfg := testConfig(t)

	_, err := New(cfg).RenderStatic(t.Context(), plugin.RenderRequest{
		Config:   cfg,
		Fetch:    stubFetch(t, testRecords()),
		Location: "/posts/missing/",
	})
	assert.Error(t, err)
}

func TestSplitLocation(t *testing.T) {
	collection, id, err := splitLocation("/posts/posts/hello/")
	require.NoError(t, err)
	assert.Equal(t, "posts", collection)
	assert.Equal(t, "posts/hello", id)

	_, _, err = splitLocation("/only-one-segment/")
	assert.Error(t, err)
}

// The theme must speak the content server's actual wire format, not just the
// stub's, so this test runs it against a real store, server, and fetch bridge.
func TestResolveAndRenderThroughContentServer(t *testing.T) {
	ctx := t.Context()
	cfg := testConfig(t)
	th := New(cfg)

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for _, rec := range testRecords() {
		require.NoError(t, st.Put(ctx, rec))
	}

	srv := server.New(st)
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() { _ = srv.Close() })
	fn := fetch.New(srv.Port())

	app, err := th.BuildForPrerendering(ctx, cfg)
	require.NoError(t, err)
	routes, err := th.Routes(app)
	require.NoError(t, err)

	urls, err := th.ResolveURLs(ctx, routes, fn)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/", "/posts/posts/hello/", "/pages/about/"}, urls)

	files, err := th.RenderStatic(ctx, plugin.RenderRequest{
		Config:   cfg,
		App:      app,
		Fetch:    fn,
		Location: "/posts/posts/hello/",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, string(files[0].Contents), "<p>First post.</p>")

	files, err = th.RenderStatic(ctx, plugin.RenderRequest{
		Config:   cfg,
		App:      app,
		Fetch:    fn,
		Location: "/",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, string(files[0].Contents), `href="/pages/about/"`)
}

func TestResolveURLsEmptyStore(t *testing.T) {
	ctx := t.Context()
	cfg := testConfig(t)
	th := New(cfg)

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := server.New(st)
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() { _ = srv.Close() })

	routes, err := th.Routes(&siteApp{Title: "Site"})
	require.NoError(t, err)

	urls, err := th.ResolveURLs(ctx, routes, fetch.New(srv.Port()))
	require.NoError(t, err)
	assert.Equal(t, []string{"/"}, urls)
}

func TestBuildWritesThemeAssets(t *testing.T) {
	cfg := testConfig(t)
	th := New(cfg)

	require.NoError(t, th.BeforeBuild(t.Context(), cfg))

	assets, err := th.Build(t.Context(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets/style.css"}, assets)

	css, err := os.ReadFile(filepath.Join(cfg.OutdirPath(), "assets", "style.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "font-family")
}
