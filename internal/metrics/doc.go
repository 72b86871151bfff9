// Package metrics provides observability hooks for plugin operations.
//
// The package implements the Null Object pattern so callers never nil-check:
// components default to NoopRecorder, whose methods compile to nothing, and
// the daemon swaps in a PrometheusRecorder when a metrics address is
// configured.
//
// Components receive a Recorder through dependency injection:
//
//	store := plugins.NewStore(...).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// HTTPHandler serves the registry for scraping; the daemon mounts it on
// /metrics.
package metrics
