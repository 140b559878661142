package build

import (
	"context"
	"errors"
	"time"

	"github.com/tahongtrung/phenomic/internal/logfields"
	"github.com/tahongtrung/phenomic/internal/metrics"
	"github.com/tahongtrung/phenomic/internal/observability"
)

// runPhases executes phases in order, recording timing and stopping on the
// first failure. Bundling is typically the dominant cost, so every phase logs
// its elapsed milliseconds on completion.
func runPhases(ctx context.Context, bs *State, recorder metrics.Recorder, phases []PhaseDef) error {
	for _, ph := range phases {
		select {
		case <-ctx.Done():
			pe := newCanceledPhaseError(ph.Name, ctx.Err())
			recorder.IncPhaseResult(string(ph.Name), metrics.ResultCanceled)
			return pe
		default:
		}

		pctx := observability.WithPhase(ctx, string(ph.Name))
		t0 := time.Now()
		err := ph.Fn(pctx, bs)
		dur := time.Since(t0)
		bs.Report.PhaseDurations[ph.Name] = dur
		recorder.ObservePhaseDuration(string(ph.Name), dur)

		if err != nil {
			var pe *PhaseError
			if !errors.As(err, &pe) {
				// Wrap unknown errors as fatal by default.
				pe = newFatalPhaseError(ph.Name, err)
			}
			switch pe.Kind {
			case PhaseErrorCanceled:
				recorder.IncPhaseResult(string(ph.Name), metrics.ResultCanceled)
			default:
				recorder.IncPhaseResult(string(ph.Name), metrics.ResultFatal)
			}
			observability.ErrorContext(pctx, "phase failed",
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(pe.Err))
			return pe
		}

		recorder.IncPhaseResult(string(ph.Name), metrics.ResultSuccess)
		observability.InfoContext(pctx, "phase complete",
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
