package daemon

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avierra/hangar/internal/config"
	"github.com/avierra/hangar/internal/oplog"
	"github.com/avierra/hangar/internal/paths"
	"github.com/avierra/hangar/internal/plugins"
	"github.com/avierra/hangar/internal/revision"
)

func TestDaemon_StartStop(t *testing.T) {
	cfg := &config.Settings{
		SimFolder: t.TempDir(),
		Daemon: config.DaemonSettings{
			BackupEvery: "1h",
			Debounce:    "50ms",
			MetricsAddr: "127.0.0.1:0",
		},
	}

	log, err := oplog.Open(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	rev, err := revision.New(t.TempDir())
	require.NoError(t, err)

	store := plugins.NewStore(cfg, log, rev)
	d := New(cfg, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Start(ctx) }()

	// Start creates the plugin folder before bringing up the watcher.
	require.Eventually(t, func() bool {
		_, err := os.Stat(paths.PluginDir(cfg.SimFolder))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not shut down")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, d.Stop(stopCtx))
}

func TestDaemon_FailedStart_StopReleasesServices(t *testing.T) {
	// Occupy a port so the metrics server cannot bind and Start fails after
	// the watcher and scheduler are already running.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	cfg := &config.Settings{
		SimFolder: t.TempDir(),
		Daemon: config.DaemonSettings{
			BackupEvery: "1h",
			Debounce:    "50ms",
			MetricsAddr: ln.Addr().String(),
		},
	}

	log, err := oplog.Open(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	rev, err := revision.New(t.TempDir())
	require.NoError(t, err)

	store := plugins.NewStore(cfg, log, rev)
	d := New(cfg, store, nil)

	require.Error(t, d.Start(context.Background()))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, d.Stop(stopCtx))
}
