package plugin

import (
	"fmt"

	"github.com/tahongtrung/phenomic/internal/errors"
)

// Capability tags the fixed capability set for reporting and diagnostics.
type Capability string

const (
	CapTransform            Capability = "transform"
	CapCollect              Capability = "collect"
	CapBeforeBuild          Capability = "beforeBuild"
	CapBuild                Capability = "build"
	CapBuildForPrerendering Capability = "buildForPrerendering"
	CapGetRoutes            Capability = "getRoutes"
	CapResolveURLs          Capability = "resolveURLs"
	CapRenderStatic         Capability = "renderStatic"
)

// Registry holds the ordered list of registered plugins and resolves
// capability roles. Registration order is significant: singleton roles go to
// the first match, chains run in order.
type Registry struct {
	plugins []Plugin
}

// NewRegistry creates a registry with the given plugins in order.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a plugin. Nil plugins and duplicate names are rejected.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return errors.ConfigError("cannot register nil plugin")
	}
	if p.Name() == "" {
		return errors.ConfigError("plugin name is required")
	}
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return errors.ConfigError(fmt.Sprintf("plugin %s already registered", p.Name()))
		}
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}

// selectSingleton returns the first plugin in registration order implementing
// T. This is the resolution rule for singleton roles; it never depends on
// anything beyond registration order.
func selectSingleton[T any](plugins []Plugin) (T, bool) {
	for _, p := range plugins {
		if v, ok := p.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// selectChain returns every plugin implementing T, in registration order.
func selectChain[T any](plugins []Plugin) []T {
	var out []T
	for _, p := range plugins {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Transformers returns the transform chain. At least one transformer is
// required before ingestion runs.
func (r *Registry) Transformers() ([]Transformer, error) {
	chain := selectChain[Transformer](r.plugins)
	if len(chain) == 0 {
		return nil, errors.ConfigError("a transform plugin is required (plugin implementing transform)")
	}
	return chain, nil
}

// Collectors returns the collect chain. At least one collector is required
// before ingestion runs.
func (r *Registry) Collectors() ([]Collector, error) {
	chain := selectChain[Collector](r.plugins)
	if len(chain) == 0 {
		return nil, errors.ConfigError("a collector plugin is required (plugin implementing collect)")
	}
	return chain, nil
}

// Bundler resolves the singleton bundler role.
func (r *Registry) Bundler() (Bundler, error) {
	b, ok := selectSingleton[Bundler](r.plugins)
	if !ok {
		return nil, errors.ConfigError("a bundler is required (plugin implementing build and buildForPrerendering)")
	}
	return b, nil
}

// Renderer resolves the singleton renderer role.
func (r *Registry) Renderer() (Renderer, error) {
	rend, ok := selectSingleton[Renderer](r.plugins)
	if !ok {
		return nil, errors.ConfigError("a renderer is required (plugin implementing getRoutes and renderStatic)")
	}
	return rend, nil
}

// URLResolver resolves the singleton URL resolver role.
func (r *Registry) URLResolver() (URLResolver, error) {
	res, ok := selectSingleton[URLResolver](r.plugins)
	if !ok {
		return nil, errors.ConfigError("a URL resolver is required (plugin implementing resolveURLs)")
	}
	return res, nil
}

// BeforeBuildHooks returns every plugin defining a beforeBuild hook, in
// registration order. An empty result is valid.
func (r *Registry) BeforeBuildHooks() []BeforeBuildHook {
	return selectChain[BeforeBuildHook](r.plugins)
}

// Capabilities reports the capability set a plugin exposes.
func Capabilities(p Plugin) []Capability {
	var caps []Capability
	if _, ok := p.(Transformer); ok {
		caps = append(caps, CapTransform)
	}
	if _, ok := p.(Collector); ok {
		caps = append(caps, CapCollect)
	}
	if _, ok := p.(BeforeBuildHook); ok {
		caps = append(caps, CapBeforeBuild)
	}
	if _, ok := p.(Bundler); ok {
		caps = append(caps, CapBuild, CapBuildForPrerendering)
	}
	if _, ok := p.(Renderer); ok {
		caps = append(caps, CapGetRoutes, CapRenderStatic)
	}
	if _, ok := p.(URLResolver); ok {
		caps = append(caps, CapResolveURLs)
	}
	return caps
}
