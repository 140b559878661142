// Package logfields holds canonical log field name constants so key names do
// not drift across packages.
package logfields

import "log/slog"

const (
	KeyBuildID    = "build_id"
	KeyPhase      = "phase"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Granular helpers returning slog.Attr so callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Phase(name string) slog.Attr     { return slog.String(KeyPhase, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
