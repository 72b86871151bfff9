package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/avierra/hangar/internal/daemon"
	"github.com/avierra/hangar/internal/events"
	"github.com/avierra/hangar/internal/logfields"
	"github.com/avierra/hangar/internal/metrics"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	recorder := metrics.NewPrometheusRecorder(nil)
	app.Store.WithRecorder(recorder)

	if url := app.Settings.Daemon.NATSURL; url != "" {
		publisher, err := events.NewPublisher(url, app.Settings.Daemon.NATSSubject)
		if err != nil {
			return err
		}
		defer publisher.Close()
		app.Store.WithPublisher(publisher)
		slog.Info("Event publishing enabled", logfields.URL(url))
	}

	return runDaemon(app, recorder)
}

func runDaemon(app *App, recorder *metrics.PrometheusRecorder) error {
	slog.Info("Starting daemon mode", logfields.Path(app.Store.PluginRoot()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := daemon.New(app.Settings, app.Store, recorder.Registry())

	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	slog.Info("Daemon started, waiting for shutdown signal...")

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon...")
	}

	// Stop runs even when Start failed partway, so services that did come
	// up are released.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := svc.Stop(stopCtx); err != nil {
		if runErr == nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
		slog.Error("Daemon cleanup failed", logfields.Error(err))
	}

	if runErr != nil {
		return fmt.Errorf("daemon error: %w", runErr)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
