// Package commands holds the phenomic CLI command implementations.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/tahongtrung/phenomic/internal/build"
	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/metrics"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/plugin/theme"
	"github.com/tahongtrung/phenomic/internal/plugin/transforms"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"phenomic.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the static site from the content directory"`
	Preview PreviewCmd `cmd:"" help:"Serve the site locally and rebuild on content changes"`
	Init    InitCmd    `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing; sets up logging and env defaults once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config.LoadEnvFiles()
	config.SetModeDefaults()
	return nil
}

// loadConfig reads the config file, falling back to directory defaults when
// the file is absent.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no configuration file, using defaults", "path", path)
		cfg = config.Default(".")
		if verr := cfg.Validate(); verr != nil {
			return nil, verr
		}
		return cfg, nil
	}
	return nil, err
}

// assembleRegistry registers the configured built-in plugins, or the default
// set when the configuration names none.
func assembleRegistry(cfg *config.Config) (*plugin.Registry, error) {
	plugins := transforms.Defaults()
	if len(cfg.Plugins) > 0 {
		plugins = plugins[:0]
		for _, name := range cfg.Plugins {
			p, err := transforms.Builtin(name)
			if err != nil {
				return nil, fmt.Errorf("configure plugins: %w", err)
			}
			plugins = append(plugins, p)
		}
	}
	plugins = append(plugins, theme.New(cfg))

	registry, err := plugin.NewRegistry(plugins...)
	if err != nil {
		return nil, fmt.Errorf("configure plugins: %w", err)
	}
	return registry, nil
}

// newRecorder returns the Prometheus recorder when metrics are enabled.
func newRecorder(cfg *config.Config) metrics.Recorder {
	if !cfg.MetricsEnabled {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(prom.NewRegistry())
}

// newOrchestrator wires config, plugins, and metrics into a build orchestrator.
func newOrchestrator(cfg *config.Config) (*build.Orchestrator, error) {
	registry, err := assembleRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return build.New(cfg, registry, newRecorder(cfg)), nil
}
