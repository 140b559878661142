// Package prerender implements the bounded-concurrency fan-out that renders
// every resolved URL and writes the resulting files to the output directory.
package prerender

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tahongtrung/phenomic/internal/plugin"
)

// DefaultWorkers caps concurrent renderStatic+write operations across the
// whole URL list, bounding memory and file-descriptor pressure.
const DefaultWorkers = 50

// Engine renders resolved URLs through a renderer plugin and writes the
// output files beneath Outdir.
type Engine struct {
	Outdir  string
	Workers int
}

// New creates an engine writing to outdir with the given concurrency cap.
// workers <= 0 selects DefaultWorkers.
func New(outdir string, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{Outdir: outdir, Workers: workers}
}

// Run renders every URL and writes its files. At most Workers render+write
// operations are in flight at once; completion order is unspecified. The
// first failure fails the whole fan-out without draining, and files already
// written stay on disk. Returns the number of files written on success.
func (e *Engine) Run(ctx context.Context, renderer plugin.Renderer, base plugin.RenderRequest, urls []string) (int, error) {
	var written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for _, location := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req := base
			req.Location = location
			files, err := renderer.RenderStatic(gctx, req)
			if err != nil {
				return fmt.Errorf("render %s: %w", location, err)
			}
			for _, f := range files {
				if err := e.writeFile(f); err != nil {
					return fmt.Errorf("render %s: %w", location, err)
				}
				written.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(written.Load()), err
	}
	return int(written.Load()), nil
}

// writeFile percent-decodes the file path, joins it to the output directory,
// creates intermediate directories, and writes the contents, overwriting any
// existing file.
func (e *Engine) writeFile(f plugin.RenderedFile) error {
	decoded, err := url.PathUnescape(f.Path)
	if err != nil {
		return fmt.Errorf("decode output path %q: %w", f.Path, err)
	}
	decoded = filepath.FromSlash(decoded)
	if decoded == "" || filepath.IsAbs(decoded) || !filepath.IsLocal(decoded) {
		return fmt.Errorf("output path %q escapes the output directory", f.Path)
	}

	target := filepath.Join(e.Outdir, decoded)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", decoded, err)
	}
	if err := os.WriteFile(target, f.Contents, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", decoded, err)
	}
	return nil
}
