// Package plugin defines the capability surface cooperating build plugins may
// implement, and the registry that resolves which plugin serves each role.
//
// A capability is present on a plugin when the plugin value implements the
// corresponding interface. Transform and collect capabilities apply to every
// matching plugin in registration order as a chain; bundler, renderer, and
// URL resolver are singleton roles resolved to the first match in
// registration order.
package plugin

import (
	"context"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/content"
	"github.com/tahongtrung/phenomic/internal/fetch"
	"github.com/tahongtrung/phenomic/internal/store"
)

// Plugin is a named bundle of zero or more capabilities. Plugins are stateless
// from the orchestrator's perspective.
type Plugin interface {
	// Name is the unique plugin identifier (e.g. "transform-markdown").
	Name() string
}

// Assets is the opaque client asset bundle produced by a bundler's Build
// phase, passed through unchanged to RenderStatic.
type Assets any

// App is the opaque server-renderable application produced by a bundler's
// BuildForPrerendering phase; consumed only by Routes and RenderStatic.
type App any

// RouteTable is the opaque structure returned by Routes, consumed only by
// ResolveURLs.
type RouteTable any

// RenderedFile is one output file produced for a location. Path is joined to
// the output directory after percent-decoding; Contents is written verbatim.
type RenderedFile struct {
	Path     string
	Contents []byte
}

// RenderRequest carries everything a renderer needs to produce the static
// output files for one location.
type RenderRequest struct {
	Config   *config.Config
	App      App
	Assets   Assets
	Fetch    fetch.Func
	Location string
}

// Transformer inspects or mutates a content file during ingestion. All
// transformers run in registration order per file.
type Transformer interface {
	Plugin
	Transform(ctx context.Context, f *content.File) error
}

// Collector persists all or part of a transformed file into the content
// store. All collectors run in registration order per file, after transforms.
type Collector interface {
	Plugin
	Collect(ctx context.Context, f *content.File, st *store.Store) error
}

// Bundler produces the client asset bundle and the server-renderable
// application, strictly in that order.
type Bundler interface {
	Plugin
	Build(ctx context.Context, cfg *config.Config) (Assets, error)
	BuildForPrerendering(ctx context.Context, cfg *config.Config) (App, error)
}

// Renderer produces a route table from the built application and static
// output files per resolved location.
type Renderer interface {
	Plugin
	Routes(app App) (RouteTable, error)
	RenderStatic(ctx context.Context, req RenderRequest) ([]RenderedFile, error)
}

// URLResolver expands an abstract route table into the concrete list of
// locations to prerender. It may query content through the fetch bridge.
type URLResolver interface {
	Plugin
	ResolveURLs(ctx context.Context, routes RouteTable, fn fetch.Func) ([]string, error)
}

// BeforeBuildHook runs before the bundler build starts. Hooks on all plugins
// fan out concurrently; the first failure fails the build.
type BeforeBuildHook interface {
	Plugin
	BeforeBuild(ctx context.Context, cfg *config.Config) error
}
