// Package config defines the immutable build-time configuration contract:
// content root, content subdirectory, output directory, and the ordered list
// of plugin names to activate. The core treats a loaded Config as read-only.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values applied during normalization.
const (
	DefaultContent            = "content"
	DefaultOutdir             = "dist"
	DefaultPrerenderWorkers   = 50
	DefaultMetricsNamespace   = "phenomic"
	defaultConfigFile         = "phenomic.yaml"
)

// Config is the build-time configuration. Owned by the caller; read-only to
// the build core.
type Config struct {
	// Path is the project root directory.
	Path string `yaml:"path"`

	// Content is the content subdirectory relative to Path.
	Content string `yaml:"content,omitempty"`

	// Outdir is the output directory for the generated site.
	Outdir string `yaml:"outdir,omitempty"`

	// Plugins lists built-in plugin names to activate, in registration order.
	Plugins []string `yaml:"plugins,omitempty"`

	// BaseURL is the canonical site URL, exposed to renderer plugins.
	BaseURL string `yaml:"base_url,omitempty"`

	// PrerenderWorkers caps concurrent renderStatic+write operations.
	PrerenderWorkers int `yaml:"prerender_workers,omitempty"`

	// LinkCheck enables the post-build internal link audit.
	LinkCheck bool `yaml:"link_check,omitempty"`

	// EventsURL is an optional NATS URL for publishing link audit events.
	EventsURL string `yaml:"events_url,omitempty"`

	// MetricsEnabled turns on the Prometheus recorder.
	MetricsEnabled bool `yaml:"metrics,omitempty"`
}

// Load reads a YAML configuration file and normalizes it. A missing file is
// an error; use Default for a zero-file setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Path == "" {
		cfg.Path = filepath.Dir(path)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a normalized configuration rooted at dir.
func Default(dir string) *Config {
	cfg := &Config{Path: dir}
	cfg.Normalize()
	return cfg
}

// Normalize applies defaults for unset fields.
func (c *Config) Normalize() {
	if c.Path == "" {
		c.Path = "."
	}
	if c.Content == "" {
		c.Content = DefaultContent
	}
	if c.Outdir == "" {
		c.Outdir = DefaultOutdir
	}
	if c.PrerenderWorkers <= 0 {
		c.PrerenderWorkers = DefaultPrerenderWorkers
	}
}

// Validate checks structural configuration invariants.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("config: path is required")
	}
	if c.Outdir == "" {
		return fmt.Errorf("config: outdir is required")
	}
	if filepath.Clean(c.OutdirPath()) == filepath.Clean(c.ContentDir()) {
		return fmt.Errorf("config: outdir must differ from content directory")
	}
	return nil
}

// ContentDir returns the absolute-or-relative content directory path.
func (c *Config) ContentDir() string {
	return filepath.Join(c.Path, c.Content)
}

// OutdirPath returns the output directory resolved against the project root.
// An absolute Outdir is used as-is.
func (c *Config) OutdirPath() string {
	if filepath.IsAbs(c.Outdir) {
		return c.Outdir
	}
	return filepath.Join(c.Path, c.Outdir)
}
