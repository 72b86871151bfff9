package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	registry         *prom.Registry
	opDuration       *prom.HistogramVec
	opResults        *prom.CounterVec
	backupBytes      *prom.HistogramVec
	installedPlugins prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.opDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "hangar",
			Name:      "operation_duration_seconds",
			Help:      "Duration of plugin operations",
			Buckets:   prom.DefBuckets,
		}, []string{"operation"})
		pr.opResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hangar",
			Name:      "operation_results_total",
			Help:      "Operation result counts by outcome",
		}, []string{"operation", "result"})
		pr.backupBytes = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "hangar",
			Name:      "backup_bytes",
			Help:      "Backup archive sizes before and after compression",
			Buckets:   prom.ExponentialBuckets(1024, 4, 12),
		}, []string{"kind"})
		pr.installedPlugins = prom.NewGauge(prom.GaugeOpts{
			Namespace: "hangar",
			Name:      "installed_plugins",
			Help:      "Number of plugin directories currently installed",
		})
		reg.MustRegister(pr.opDuration, pr.opResults, pr.backupBytes, pr.installedPlugins)
	})
	return pr
}

// Registry returns the registry the recorder's metrics live in, for wiring
// the scrape endpoint.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *PrometheusRecorder) ObserveOperationDuration(operation string, d time.Duration) {
	if p == nil || p.opDuration == nil {
		return
	}
	p.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOperationResult(operation string, result ResultLabel) {
	if p == nil || p.opResults == nil {
		return
	}
	p.opResults.WithLabelValues(operation, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBackupBytes(compressed, uncompressed int64) {
	if p == nil || p.backupBytes == nil {
		return
	}
	p.backupBytes.WithLabelValues("compressed").Observe(float64(compressed))
	p.backupBytes.WithLabelValues("raw").Observe(float64(uncompressed))
}

func (p *PrometheusRecorder) SetInstalledPlugins(n int) {
	if p == nil || p.installedPlugins == nil {
		return
	}
	p.installedPlugins.Set(float64(n))
}
