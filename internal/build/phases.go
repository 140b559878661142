package build

import (
	"context"
	"fmt"
	"time"

	"github.com/tahongtrung/phenomic/internal/config"
	"github.com/tahongtrung/phenomic/internal/fetch"
	"github.com/tahongtrung/phenomic/internal/plugin"
	"github.com/tahongtrung/phenomic/internal/server"
	"github.com/tahongtrung/phenomic/internal/store"
)

// PhaseName is a strongly-typed identifier for a build phase. All canonical
// phases are declared as constants here for compile-time safety.
type PhaseName string

// Canonical phase names, in execution order.
const (
	PhaseCleaning         PhaseName = "cleaning"
	PhaseServerStarting   PhaseName = "serverStarting"
	PhaseBeforeBuildHooks PhaseName = "beforeBuildHooks"
	PhaseClientBundling   PhaseName = "clientBundling"
	PhaseAppBundling      PhaseName = "appBundling"
	PhaseIngesting        PhaseName = "ingesting"
	PhaseResolvingRoutes  PhaseName = "resolvingRoutes"
	PhasePrerendering     PhaseName = "prerendering"
	PhaseServerClosing    PhaseName = "serverClosing"
)

// Phase is a discrete unit of work in the site build.
type Phase func(ctx context.Context, bs *State) error

// PhaseDef pairs a phase name with its executing function.
type PhaseDef struct {
	Name PhaseName
	Fn   Phase
}

// PhaseErrorKind enumerates structured phase error categories.
type PhaseErrorKind string

const (
	PhaseErrorFatal    PhaseErrorKind = "fatal"    // Build must abort.
	PhaseErrorCanceled PhaseErrorKind = "canceled" // Context cancellation.
)

// PhaseError is a structured error carrying category and underlying cause.
type PhaseError struct {
	Kind  PhaseErrorKind
	Phase PhaseName
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase %s: %v", e.Kind, e.Phase, e.Err)
}
func (e *PhaseError) Unwrap() error { return e.Err }

func newFatalPhaseError(phase PhaseName, err error) *PhaseError {
	return &PhaseError{Kind: PhaseErrorFatal, Phase: phase, Err: err}
}
func newCanceledPhaseError(phase PhaseName, err error) *PhaseError {
	return &PhaseError{Kind: PhaseErrorCanceled, Phase: phase, Err: err}
}

// State carries mutable build state across phases. It is owned by one build
// invocation and never shared between builds.
type State struct {
	Config   *config.Config
	Registry *plugin.Registry

	Store  *store.Store
	Server *server.Server
	Fetch  fetch.Func

	Assets plugin.Assets
	App    plugin.App
	URLs   []string

	Report *Report
	start  time.Time
}

func newState(cfg *config.Config, registry *plugin.Registry, report *Report) *State {
	return &State{
		Config:   cfg,
		Registry: registry,
		Report:   report,
		start:    time.Now(),
	}
}

// closeServer tears down the ephemeral server if it was started. The
// underlying close is idempotent, so every exit path can call this safely.
func (bs *State) closeServer() error {
	if bs.Server == nil {
		return nil
	}
	return bs.Server.Close()
}
