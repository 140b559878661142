// Package build implements the top-level build orchestrator: a phase machine
// sequencing cleaning, ephemeral server startup, plugin hooks, bundling,
// content ingestion, URL resolution, and prerendering, with the guarantee
// that the ephemeral server is torn down on every exit path.
package build

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/errors"
	"github.com/tahongtrung/phenomic/internal/fetch"
	"github.com/tahongtrung/phenomic/internal/ingest"
	"github.com/tahongtrung/phenomic/internal/linkcheck"
	"github.com/tahongtrung/phenomic/internal/metrics"
	"github.com/tahongtrung/phenomic/internal/observability"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/prerender"
	"github.com/tahongtrung/phenomic/internal/server"
	"github.com/tahongtrung/phenomic/internal/store"
)

// Orchestrator sequences one build from a configuration and a plugin
// registry. A single Orchestrator may run multiple builds; each Build call
// owns a fresh store, server, and port.
type Orchestrator struct {
	Config   *config.Config
	Registry *plugin.Registry
	Recorder metrics.Recorder
}

// New creates an orchestrator. A nil recorder falls back to the noop
// recorder.
func New(cfg *config.Config, registry *plugin.Registry, recorder metrics.Recorder) *Orchestrator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Orchestrator{Config: cfg, Registry: registry, Recorder: recorder}
}

// Build runs the full pipeline. On failure the ephemeral server is closed
// before the error propagates; no other rollback occurs (files already
// written stay on disk). The returned report is populated on both success
// and failure.
func (o *Orchestrator) Build(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)

	report := newReport(buildID)
	bs := newState(o.Config, o.Registry, report)

	// Bundler behavior is mode-sensitive; establish the mode once, before
	// any bundling phase can observe it.
	config.SetModeDefaults()

	observability.InfoContext(ctx, "build starting",
		slog.String("outdir", o.Config.OutdirPath()),
		slog.String("mode", config.Mode()))

	err := runPhases(ctx, bs, o.Recorder, o.phases())

	// The single guaranteed cleanup: no leaked listening server, whatever
	// happened above. The close is idempotent, so the success path having
	// already closed it in serverClosing is fine.
	if cerr := bs.closeServer(); cerr != nil && err == nil {
		err = errors.ServerError("close content server").WithCause(cerr)
	}
	if bs.Store != nil {
		_ = bs.Store.Close()
	}

	report.Duration = time.Since(bs.start)
	o.Recorder.ObserveBuildDuration(report.Duration)

	if err != nil {
		report.Outcome = OutcomeFailed
		if ctx.Err() != nil {
			report.Outcome = OutcomeCanceled
		}
		o.Recorder.IncBuildOutcome(report.Outcome)
		report.Log()
		return report, err
	}

	if o.Config.LinkCheck {
		o.auditLinks(ctx, report)
	}

	report.Outcome = OutcomeSuccess
	o.Recorder.IncBuildOutcome(OutcomeSuccess)
	report.Log()
	return report, nil
}

func (o *Orchestrator) phases() []PhaseDef {
	return []PhaseDef{
		{PhaseCleaning, phaseClean},
		{PhaseServerStarting, phaseStartServer},
		{PhaseBeforeBuildHooks, phaseBeforeBuildHooks},
		{PhaseClientBundling, phaseClientBundling},
		{PhaseAppBundling, phaseAppBundling},
		{PhaseIngesting, phaseIngest},
		{PhaseResolvingRoutes, phaseResolveRoutes},
		{PhasePrerendering, o.phasePrerender},
		{PhaseServerClosing, phaseCloseServer},
	}
}

// phaseClean removes any previous output directory contents before anything
// else.
func phaseClean(ctx context.Context, bs *State) error {
	outdir := bs.Config.OutdirPath()
	if err := os.RemoveAll(outdir); err != nil {
		return errors.FileSystemError(fmt.Sprintf("clean output directory %s", outdir)).WithCause(err)
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return errors.FileSystemError(fmt.Sprintf("create output directory %s", outdir)).WithCause(err)
	}
	return nil
}

// phaseStartServer creates the fresh content store and binds the ephemeral
// server to a newly allocated local port. The fetch bridge is ready once this
// phase completes.
func phaseStartServer(ctx context.Context, bs *State) error {
	st, err := store.New(":memory:")
	if err != nil {
		return err
	}
	bs.Store = st

	srv := server.New(st)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	bs.Server = srv
	bs.Fetch = fetch.New(srv.Port())
	return nil
}

// phaseBeforeBuildHooks fans out the beforeBuild hook on every plugin that
// defines it, concurrently, and surfaces the first failure.
func phaseBeforeBuildHooks(ctx context.Context, bs *State) error {
	hooks := bs.Registry.BeforeBuildHooks()
	if len(hooks) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range hooks {
		g.Go(func() error {
			if err := h.BeforeBuild(gctx, bs.Config); err != nil {
				return fmt.Errorf("beforeBuild hook %s: %w", h.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func phaseClientBundling(ctx context.Context, bs *State) error {
	bundler, err := bs.Registry.Bundler()
	if err != nil {
		return err
	}
	assets, err := bundler.Build(ctx, bs.Config)
	if err != nil {
		return errors.BundleError(fmt.Sprintf("bundler %s build", bundler.Name())).WithCause(err)
	}
	bs.Assets = assets
	return nil
}

func phaseAppBundling(ctx context.Context, bs *State) error {
	bundler, err := bs.Registry.Bundler()
	if err != nil {
		return err
	}
	app, err := bundler.BuildForPrerendering(ctx, bs.Config)
	if err != nil {
		return errors.BundleError(fmt.Sprintf("bundler %s buildForPrerendering", bundler.Name())).WithCause(err)
	}
	bs.App = app
	return nil
}

func phaseIngest(ctx context.Context, bs *State) error {
	pipeline := ingest.NewPipeline(bs.Registry, bs.Store)
	contentDir := bs.Config.ContentDir()

	n, err := pipeline.Run(ctx, contentDir)
	if err != nil {
		return err
	}
	bs.Report.ContentFiles = n
	if n == 0 {
		bs.Report.AddWarning(fmt.Sprintf("no content ingested from %s", contentDir))
	}
	return nil
}

func phaseResolveRoutes(ctx context.Context, bs *State) error {
	renderer, err := bs.Registry.Renderer()
	if err != nil {
		return err
	}
	resolver, err := bs.Registry.URLResolver()
	if err != nil {
		return err
	}

	routes, err := renderer.Routes(bs.App)
	if err != nil {
		return errors.ResolveError(fmt.Sprintf("renderer %s getRoutes", renderer.Name())).WithCause(err)
	}
	urls, err := resolver.ResolveURLs(ctx, routes, bs.Fetch)
	if err != nil {
		return errors.ResolveError(fmt.Sprintf("resolver %s resolveURLs", resolver.Name())).WithCause(err)
	}
	bs.URLs = urls
	bs.Report.URLCount = len(urls)

	if len(urls) == 0 {
		msg := "no URLs resolved; check for a catch-all route with no fallback /"
		observability.WarnContext(ctx, msg)
		bs.Report.AddWarning(msg)
	}
	return nil
}

func (o *Orchestrator) phasePrerender(ctx context.Context, bs *State) error {
	renderer, err := bs.Registry.Renderer()
	if err != nil {
		return err
	}

	engine := prerender.New(bs.Config.OutdirPath(), bs.Config.PrerenderWorkers)
	o.Recorder.SetPrerenderConcurrency(engine.Workers)

	base := plugin.RenderRequest{
		Config: bs.Config,
		App:    bs.App,
		Assets: bs.Assets,
		Fetch:  bs.Fetch,
	}
	written, err := engine.Run(ctx, renderer, base, bs.URLs)
	bs.Report.FilesWritten = written
	if err != nil {
		return err
	}

	o.Recorder.AddPagesRendered(len(bs.URLs))
	o.Recorder.AddFilesWritten(written)
	return nil
}

// phaseCloseServer closes the ephemeral server on the success path. done is
// only reached after the server is confirmed closed.
func phaseCloseServer(ctx context.Context, bs *State) error {
	return bs.closeServer()
}

// auditLinks runs the post-build internal link audit. Warn-only: broken
// links never fail a build that already produced its output.
func (o *Orchestrator) auditLinks(ctx context.Context, report *Report) {
	issues, err := linkcheck.Audit(ctx, o.Config.OutdirPath(), o.Config.EventsURL)
	if err != nil {
		observability.WarnContext(ctx, "link audit failed", slog.String("error", err.Error()))
		return
	}
	for _, issue := range issues {
		report.AddWarning(issue.String())
		observability.WarnContext(ctx, "broken internal link",
			slog.String("page", issue.Page),
			slog.String("target", issue.Target))
	}
}
