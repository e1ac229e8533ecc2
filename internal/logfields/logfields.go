package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID    = "run_id"
	KeyStage    = "stage"
	KeyIndex    = "index"
	KeyPath     = "path"
	KeyFile     = "file"
	KeyUnit     = "unit"
	KeyPages    = "pages"
	KeyBates    = "bates"
	KeyError    = "error"
	KeyDuration = "duration_ms"
	KeyCount    = "count"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Index(idx string) slog.Attr      { return slog.String(KeyIndex, idx) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Unit(name string) slog.Attr      { return slog.String(KeyUnit, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Bates(n int) slog.Attr           { return slog.Int(KeyBates, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
