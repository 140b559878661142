// Package ingest turns the configured content directory into populated
// content records by running every discovered file through the transform and
// collect plugin chains.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tahongtrung/phenomic/internal/content"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/store"
)

// Pipeline runs the transform/collect chains over a content tree and
// populates the store. The store is destroyed and rebuilt on every run.
type Pipeline struct {
	registry *plugin.Registry
	store    *store.Store
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(registry *plugin.Registry, st *store.Store) *Pipeline {
	return &Pipeline{registry: registry, store: st}
}

// Run ingests the content directory and returns the number of files
// processed. A missing content directory is a warning, not an error: the
// store comes out empty, which is a legitimate state for app-shell sites.
//
// Files are processed concurrently and independently; the first failure fails
// the whole run, with the offending file path attached. All work is joined
// before Run returns.
func (p *Pipeline) Run(ctx context.Context, contentDir string) (int, error) {
	transformers, err := p.registry.Transformers()
	if err != nil {
		return 0, err
	}
	collectors, err := p.registry.Collectors()
	if err != nil {
		return 0, err
	}

	discovery := content.NewDiscovery(contentDir)
	if !discovery.Exists() {
		slog.Warn("content directory not found, skipping ingestion", "dir", contentDir)
		return 0, nil
	}

	files, err := discovery.Scan()
	if err != nil {
		return 0, fmt.Errorf("scan content directory %s: %w", contentDir, err)
	}

	if err := p.store.Reset(ctx); err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		f := &files[i]
		g.Go(func() error {
			if err := p.processFile(gctx, f, transformers, collectors); err != nil {
				return fmt.Errorf("process content file %s: %w", f.RelativePath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(files), nil
}

// processFile runs one file through all transformers, then all collectors,
// each in registration order.
func (p *Pipeline) processFile(ctx context.Context, f *content.File, transformers []plugin.Transformer, collectors []plugin.Collector) error {
	for _, tr := range transformers {
		if err := tr.Transform(ctx, f); err != nil {
			return fmt.Errorf("transform %s: %w", tr.Name(), err)
		}
	}
	for _, c := range collectors {
		if err := c.Collect(ctx, f, p.store); err != nil {
			return fmt.Errorf("collect %s: %w", c.Name(), err)
		}
	}
	return nil
}
