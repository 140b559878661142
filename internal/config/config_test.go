package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Path: "/site"}
	cfg.Normalize()

	assert.Equal(t, "content", cfg.Content)
	assert.Equal(t, "dist", cfg.Outdir)
	assert.Equal(t, 50, cfg.PrerenderWorkers)
	assert.Equal(t, filepath.Join("/site", "content"), cfg.ContentDir())
	assert.Equal(t, filepath.Join("/site", "dist"), cfg.OutdirPath())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phenomic.yaml")
	data := []byte("content: posts\noutdir: public\nplugins:\n  - transform-markdown\n  - collector-default\nprerender_workers: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Path)
	assert.Equal(t, "posts", cfg.Content)
	assert.Equal(t, "public", cfg.Outdir)
	assert.Equal(t, []string{"transform-markdown", "collector-default"}, cfg.Plugins)
	assert.Equal(t, 8, cfg.PrerenderWorkers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsOutdirEqualContent(t *testing.T) {
	cfg := &Config{Path: "/site", Content: "stuff", Outdir: "stuff"}
	cfg.Normalize()
	assert.Error(t, cfg.Validate())
}

func TestAbsoluteOutdir(t *testing.T) {
	cfg := &Config{Path: "/site", Outdir: "/var/www"}
	cfg.Normalize()
	assert.Equal(t, "/var/www", cfg.OutdirPath())
}

func TestSetModeDefaults(t *testing.T) {
	t.Setenv(EnvMode, "")
	t.Setenv(EnvNodeMode, "")
	os.Unsetenv(EnvMode)
	os.Unsetenv(EnvNodeMode)

	SetModeDefaults()
	assert.Equal(t, ModeProduction, os.Getenv(EnvMode))
	assert.Equal(t, ModeProduction, os.Getenv(EnvNodeMode))

	// Caller-provided mode wins.
	t.Setenv(EnvMode, ModeDevelopment)
	SetModeDefaults()
	assert.Equal(t, ModeDevelopment, Mode())
}
