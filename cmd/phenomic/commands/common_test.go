package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/metrics"
)

func TestAssembleRegistryDefaults(t *testing.T) {
	cfg := config.Default(t.TempDir())

	registry, err := assembleRegistry(cfg)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, p := range registry.Plugins() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"transform-markdown", "transform-json", "collector-default", "theme-default"}, names)
}

func TestAssembleRegistryConfiguredSubset(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Plugins = []string{"transform-markdown", "collector-default"}

	registry, err := assembleRegistry(cfg)
	require.NoError(t, err)
	assert.Len(t, registry.Plugins(), 3)
}

func TestAssembleRegistryUnknownPlugin(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Plugins = []string{"transform-asciidoc"}

	_, err := assembleRegistry(cfg)
	assert.ErrorContains(t, err, "transform-asciidoc")
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "phenomic.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Content)
	assert.Equal(t, "dist", cfg.Outdir)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phenomic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content: docs\noutdir: dist\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.Content)
	assert.Equal(t, "dist", cfg.Outdir)
	assert.Equal(t, dir, cfg.Path)
}

func TestNewRecorderHonorsMetricsFlag(t *testing.T) {
	cfg := config.Default(t.TempDir())
	assert.IsType(t, metrics.NoopRecorder{}, newRecorder(cfg))

	cfg.MetricsEnabled = true
	assert.IsType(t, &metrics.PrometheusRecorder{}, newRecorder(cfg))
}
