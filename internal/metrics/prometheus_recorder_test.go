package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveOperationDuration("backup", 150*time.Millisecond)
	pr.IncOperationResult("backup", ResultSuccess)
	pr.ObserveBackupBytes(1024, 8192)
	pr.SetInstalledPlugins(3)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestPrometheusRecorder_NilReceiverIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveOperationDuration("install", time.Second)
	pr.IncOperationResult("install", ResultError)
	pr.ObserveBackupBytes(1, 2)
	pr.SetInstalledPlugins(0)
}
