package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/tahongtrung/phenomic/internal/config"
)

// BuildCmd implements the 'build' command: one full static build.
type BuildCmd struct {
	Outdir  string `short:"o" help:"Override the configured output directory"`
	Workers int    `help:"Override the prerender concurrency cap"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyBuildOverrides(cfg, b)

	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = orch.Build(ctx)
	return err
}

func applyBuildOverrides(cfg *config.Config, b *BuildCmd) {
	if b.Outdir != "" {
		cfg.Outdir = b.Outdir
	}
	if b.Workers > 0 {
		cfg.PrerenderWorkers = b.Workers
	}
}
