package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/tahongtrung/phenomic/internal/build"
	"github.com/tahongtrung/phenomic/internal/preview"
)

// PreviewCmd serves the built site locally and rebuilds on content changes.
type PreviewCmd struct {
	Port   int    `short:"p" default:"3333" help:"Local preview server port"`
	Outdir string `short:"o" help:"Override the configured output directory"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if p.Outdir != "" {
		cfg.Outdir = p.Outdir
	}

	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	buildFn := func(ctx context.Context) (*build.Report, error) {
		return orch.Build(ctx)
	}
	return preview.Run(ctx, cfg, buildFn, p.Port)
}
