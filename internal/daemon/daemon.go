// Package daemon runs hangar's background mode: it watches the plugin
// directory for outside changes, backs up all plugins on a schedule, and
// exposes Prometheus metrics.
package daemon

import (
	"context"
	"log/slog"
	"os"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/avierra/hangar/internal/config"
	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/logfields"
	"github.com/avierra/hangar/internal/metrics"
	"github.com/avierra/hangar/internal/plugins"
)

// Daemon owns the background services around a plugin store.
type Daemon struct {
	cfg      *config.Settings
	store    *plugins.Store
	registry *prom.Registry

	watcher       *PluginWatcher
	scheduler     *Scheduler
	metricsServer *MetricsServer

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a daemon. The registry backs the /metrics endpoint and should
// be the one the store's recorder registers into; nil disables the endpoint
// content but not the server.
func New(cfg *config.Settings, store *plugins.Store, registry *prom.Registry) *Daemon {
	return &Daemon{
		cfg:      cfg,
		store:    store,
		registry: registry,
		stopChan: make(chan struct{}),
	}
}

// Start brings up all services and blocks until the context is canceled or
// Stop is called. Services are released by Stop, which is safe to call even
// after a failed Start.
func (d *Daemon) Start(ctx context.Context) error {
	pluginRoot := d.store.PluginRoot()
	slog.Info("Starting daemon", logfields.Path(pluginRoot))

	// A fresh installation may not have the plugin folder yet; the watcher
	// needs it to exist.
	if err := os.MkdirAll(pluginRoot, 0o755); err != nil {
		return herrors.IO(err, "creating plugin folder %s", pluginRoot)
	}

	d.refreshInventory()

	watcher, err := NewPluginWatcher(pluginRoot, d.cfg.DebounceWindow(), d.refreshInventory)
	if err != nil {
		return err
	}
	d.watcher = watcher
	if err := d.watcher.Start(ctx); err != nil {
		return err
	}

	scheduler, err := NewScheduler()
	if err != nil {
		return err
	}
	d.scheduler = scheduler
	jobID, err := d.scheduler.ScheduleBackups(d.cfg.BackupInterval(), func() {
		d.runScheduledBackup(ctx)
	})
	if err != nil {
		return err
	}
	d.scheduler.Start(ctx)
	slog.Info("Scheduled periodic backups",
		slog.String("job_id", jobID), slog.Duration("every", d.cfg.BackupInterval()))

	if addr := d.cfg.Daemon.MetricsAddr; addr != "" {
		d.metricsServer = NewMetricsServer(addr, metrics.HTTPHandler(d.registry))
		if err := d.metricsServer.Start(); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		slog.Info("Daemon stopped by context cancellation")
	case <-d.stopChan:
		slog.Info("Daemon stopped by stop signal")
	}
	return nil
}

// Stop signals the daemon to shut down and tears down its services.
func (d *Daemon) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.stopChan) })

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil {
			slog.Error("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if d.metricsServer != nil {
		if err := d.metricsServer.Stop(ctx); err != nil {
			return herrors.IO(err, "stopping metrics server")
		}
	}

	slog.Info("Daemon stopped")
	return nil
}

// refreshInventory re-reads the plugin list after the folder settled,
// keeping the installed-plugins gauge current.
func (d *Daemon) refreshInventory() {
	names, err := d.store.List()
	if err != nil {
		slog.Error("Plugin folder scan failed", logfields.Error(err))
		return
	}
	slog.Info("Plugin folder changed", logfields.Count(len(names)))
}

// runScheduledBackup backs up every installed plugin and logs a summary.
func (d *Daemon) runScheduledBackup(ctx context.Context) {
	slog.Info("Running scheduled backup")

	reports := d.store.BackupAll(ctx)
	var failed int
	for _, r := range reports {
		if !r.Success {
			failed++
			slog.Warn("Scheduled backup of plugin failed",
				logfields.Plugin(r.Plugin), slog.String("reason", r.Message))
		}
	}

	slog.Info("Scheduled backup finished",
		logfields.Count(len(reports)), slog.Int("failed", failed))
}
