package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPlugin     = "plugin"
	KeyBackup     = "backup"
	KeyOperation  = "operation"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyArchive    = "archive"
	KeyVersion    = "version"
	KeyBytes      = "bytes"
	KeyRatio      = "compression_pct"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Backup(name string) slog.Attr    { return slog.String(KeyBackup, name) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Archive(name string) slog.Attr   { return slog.String(KeyArchive, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func Ratio(pct float64) slog.Attr     { return slog.Float64(KeyRatio, pct) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
