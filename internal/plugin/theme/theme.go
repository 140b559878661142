// Package theme ships the built-in fallback site plugin: a bundler, renderer,
// and URL resolver that turn store records into plain HTML pages. Projects
// with their own rendering register a renderer ahead of it.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/errors"
	"github.com/tahongtrung/phenomic/internal/fetch"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/store"
)

const stylesheet = `body{max-width:42rem;margin:2rem auto;padding:0 1rem;font-family:sans-serif;line-height:1.6}
a{color:#0366d6}
header{border-bottom:1px solid #ddd;margin-bottom:1.5rem}`

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/assets/style.css">
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>{{.Body}}</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/assets/style.css">
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>
{{range .Collections}}<section>
<h2>{{.Name}}</h2>
<ul>
{{range .Records}}<li><a href="{{.URL}}">{{.Title}}</a></li>
{{end}}</ul>
</section>
{{end}}</main>
</body>
</html>
`))

// siteApp is the App artifact: what the prerenderer needs beyond the store.
type siteApp struct {
	Title   string
	BaseURL string
}

// recordRoutes is the RouteTable artifact: an index route plus one pattern
// per collection record.
type recordRoutes struct {
	app *siteApp
}

// Theme is the built-in site plugin.
type Theme struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Theme { return &Theme{cfg: cfg} }

func (*Theme) Name() string { return "theme-default" }

// BeforeBuild ensures the output directory exists before bundling starts.
func (t *Theme) BeforeBuild(_ context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutdirPath(), 0o755); err != nil {
		return errors.FileSystemError("create output directory").WithCause(err)
	}
	return nil
}

// Build writes the theme's static assets and returns their paths.
func (t *Theme) Build(_ context.Context, cfg *config.Config) (plugin.Assets, error) {
	assetDir := filepath.Join(cfg.OutdirPath(), "assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return nil, errors.BundleError("write theme assets").WithCause(err)
	}
	cssPath := filepath.Join(assetDir, "style.css")
	if err := os.WriteFile(cssPath, []byte(stylesheet), 0o644); err != nil {
		return nil, errors.BundleError("write theme assets").WithCause(err)
	}
	return []string{"assets/style.css"}, nil
}

// BuildForPrerendering returns the server-renderable application artifact.
func (t *Theme) BuildForPrerendering(_ context.Context, cfg *config.Config) (plugin.App, error) {
	title := "Site"
	if cfg.BaseURL != "" {
		title = cfg.BaseURL
	}
	return &siteApp{Title: title, BaseURL: cfg.BaseURL}, nil
}

func (t *Theme) Routes(app plugin.App) (plugin.RouteTable, error) {
	site, ok := app.(*siteApp)
	if !ok {
		return nil, errors.PrerenderError(fmt.Sprintf("unexpected app artifact %T", app))
	}
	return &recordRoutes{app: site}, nil
}

// ResolveURLs expands the route table by querying every collection through
// the fetch bridge: the index plus one pretty URL per record.
func (t *Theme) ResolveURLs(ctx context.Context, routes plugin.RouteTable, fn fetch.Func) ([]string, error) {
	if _, ok := routes.(*recordRoutes); !ok {
		return nil, errors.ResolveError(fmt.Sprintf("unexpected route table %T", routes))
	}

	collections, err := fetchCollections(ctx, fn)
	if err != nil {
		return nil, err
	}

	urls := []string{"/"}
	for _, collection := range collections {
		records, err := fetchRecords(ctx, fn, collection)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			urls = append(urls, "/"+path.Join(rec.Collection, rec.ID)+"/")
		}
	}
	return urls, nil
}

// RenderStatic renders one location to its index.html.
func (t *Theme) RenderStatic(ctx context.Context, req plugin.RenderRequest) ([]plugin.RenderedFile, error) {
	site, _ := req.App.(*siteApp)
	if site == nil {
		site = &siteApp{Title: "Site"}
	}

	var out strings.Builder
	if req.Location == "/" {
		if err := t.renderIndex(ctx, req.Fetch, site, &out); err != nil {
			return nil, err
		}
	} else if err := t.renderRecord(ctx, req.Fetch, req.Location, &out); err != nil {
		return nil, err
	}

	outPath := path.Join(strings.TrimPrefix(req.Location, "/"), "index.html")
	return []plugin.RenderedFile{{Path: outPath, Contents: []byte(out.String())}}, nil
}

type indexEntry struct {
	Title string
	URL   string
}

type indexSection struct {
	Name    string
	Records []indexEntry
}

func (t *Theme) renderIndex(ctx context.Context, fn fetch.Func, site *siteApp, out *strings.Builder) error {
	collections, err := fetchCollections(ctx, fn)
	if err != nil {
		return err
	}

	sections := make([]indexSection, 0, len(collections))
	for _, collection := range collections {
		records, err := fetchRecords(ctx, fn, collection)
		if err != nil {
			return err
		}
		section := indexSection{Name: collection}
		for _, rec := range records {
			section.Records = append(section.Records, indexEntry{
				Title: recordTitle(rec),
				URL:   "/" + path.Join(rec.Collection, rec.ID) + "/",
			})
		}
		sections = append(sections, section)
	}

	return indexTemplate.Execute(out, struct {
		Title       string
		Collections []indexSection
	}{Title: site.Title, Collections: sections})
}

func (t *Theme) renderRecord(ctx context.Context, fn fetch.Func, location string, out *strings.Builder) error {
	collection, id, err := splitLocation(location)
	if err != nil {
		return err
	}

	raw, err := fn(ctx, fetch.Query{Collection: collection, ID: id})
	if err != nil {
		return errors.PrerenderError(fmt.Sprintf("fetch record for %s", location)).WithCause(err)
	}
	var rec store.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return errors.PrerenderError(fmt.Sprintf("decode record for %s", location)).WithCause(err)
	}

	body, _ := rec.Data["body"].(string)
	return pageTemplate.Execute(out, struct {
		Title string
		Body  template.HTML
	}{Title: recordTitle(rec), Body: template.HTML(body)})
}

// splitLocation maps "/<collection>/<id...>/" back to store coordinates.
func splitLocation(location string) (collection, id string, err error) {
	trimmed := strings.Trim(location, "/")
	collection, id, found := strings.Cut(trimmed, "/")
	if !found || collection == "" || id == "" {
		return "", "", errors.PrerenderError(fmt.Sprintf("location %q does not address a record", location))
	}
	return collection, id, nil
}

func fetchCollections(ctx context.Context, fn fetch.Func) ([]string, error) {
	raw, err := fn(ctx, fetch.Query{})
	if err != nil {
		return nil, errors.ResolveError("fetch collections").WithCause(err)
	}
	var envelope struct {
		Collections []string `json:"collections"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.ResolveError("decode collections").WithCause(err)
	}
	return envelope.Collections, nil
}

func fetchRecords(ctx context.Context, fn fetch.Func, collection string) ([]store.Record, error) {
	raw, err := fn(ctx, fetch.Query{Collection: collection})
	if err != nil {
		return nil, errors.ResolveError(fmt.Sprintf("fetch collection %s", collection)).WithCause(err)
	}
	var envelope struct {
		List []store.Record `json:"list"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.ResolveError(fmt.Sprintf("decode collection %s", collection)).WithCause(err)
	}
	return envelope.List, nil
}

func recordTitle(rec store.Record) string {
	if title, ok := rec.Data["title"].(string); ok && title != "" {
		return title
	}
	return rec.ID
}
