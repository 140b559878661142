package build

import (
	"log/slog"
	"time"

	"github.com/tahongtrung/phenomic/internal/logfields"
)

// Outcome labels for a finished build.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Report accumulates per-phase timing and counters for one build.
type Report struct {
	BuildID        string
	PhaseDurations map[PhaseName]time.Duration
	Warnings       []string
	ContentFiles   int
	URLCount       int
	FilesWritten   int
	Outcome        string
	Duration       time.Duration
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		PhaseDurations: make(map[PhaseName]time.Duration),
	}
}

// AddWarning records a non-fatal condition (missing content directory, zero
// resolved URLs).
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Log emits a structured summary of the finished build.
func (r *Report) Log() {
	slog.Info("build finished",
		logfields.KeyBuildID, r.BuildID,
		"outcome", r.Outcome,
		logfields.KeyDurationMS, r.Duration.Milliseconds(),
		"content_files", r.ContentFiles,
		"urls", r.URLCount,
		"files_written", r.FilesWritten,
		"warnings", len(r.Warnings))
}
