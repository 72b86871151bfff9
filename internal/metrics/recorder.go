package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultConflict ResultLabel = "conflict"
	ResultError    ResultLabel = "error"
)

// Recorder defines observability hooks for plugin operations. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// nil receivers when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveOperationDuration(operation string, d time.Duration)
	IncOperationResult(operation string, result ResultLabel)
	ObserveBackupBytes(compressed, uncompressed int64)
	SetInstalledPlugins(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveOperationDuration(string, time.Duration) {}
func (NoopRecorder) IncOperationResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBackupBytes(int64, int64)                {}
func (NoopRecorder) SetInstalledPlugins(int)                        {}
