package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment mode variables consulted by mode-sensitive plugins (bundlers
// behave differently in development vs production).
const (
	EnvMode     = "PHENOMIC_ENV"
	EnvNodeMode = "NODE_ENV"

	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// LoadEnvFiles loads environment variables from .env then .env.local.
// Existing process environment variables are never overwritten; missing files
// are ignored.
func LoadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		_ = godotenv.Load(name)
	}
}

// SetModeDefaults establishes a production-like mode unless the caller
// already set one. Called once before bundling since bundler behavior is
// mode-sensitive.
func SetModeDefaults() {
	if os.Getenv(EnvMode) == "" {
		_ = os.Setenv(EnvMode, ModeProduction)
	}
	if os.Getenv(EnvNodeMode) == "" {
		_ = os.Setenv(EnvNodeMode, ModeProduction)
	}
}

// Mode returns the effective environment mode.
func Mode() string {
	if m := os.Getenv(EnvMode); m != "" {
		return m
	}
	if m := os.Getenv(EnvNodeMode); m != "" {
		return m
	}
	return ModeProduction
}
