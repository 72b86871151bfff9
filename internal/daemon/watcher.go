package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/logfields"
)

// PluginWatcher monitors the plugin directory for changes made outside
// hangar (manual copies, installer runs, X-Plane updaters). Bursts of events
// are debounced; onSettle fires once per settled burst.
type PluginWatcher struct {
	dir        string
	onSettle   func()
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	stopChan   chan struct{}
	settleChan chan struct{}
	debounce   time.Duration
}

// NewPluginWatcher creates a watcher over dir. The directory must exist.
func NewPluginWatcher(dir string, debounce time.Duration, onSettle func()) (*PluginWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, herrors.IO(err, "creating file watcher")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, herrors.IO(err, "resolving watch path %s", dir)
	}

	return &PluginWatcher{
		dir:        absDir,
		onSettle:   onSettle,
		watcher:    watcher,
		stopChan:   make(chan struct{}),
		settleChan: make(chan struct{}, 1),
		debounce:   debounce,
	}, nil
}

// Start begins monitoring the plugin directory.
func (w *PluginWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return herrors.IO(err, "watching plugin folder %s", w.dir)
	}

	slog.Info("Starting plugin folder watcher", logfields.Path(w.dir))

	go w.watchLoop(ctx)
	go w.settleLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *PluginWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	slog.Info("Stopping plugin folder watcher")
	close(w.stopChan)

	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}
}

// watchLoop forwards relevant file system events into the debounce channel.
func (w *PluginWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			slog.Debug("Plugin folder change detected",
				logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Plugin watcher error", logfields.Error(err))
		}
	}
}

// settleLoop runs onSettle once a burst of events has gone quiet.
func (w *PluginWatcher) settleLoop(ctx context.Context) {
	var settleTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			return
		case <-w.stopChan:
			if settleTimer != nil {
				settleTimer.Stop()
			}
			return
		case <-w.settleChan:
			if settleTimer != nil {
				settleTimer.Stop()
			}
			settleTimer = time.AfterFunc(w.debounce, w.onSettle)
		}
	}
}

// trigger queues a debounced settle without blocking the event loop.
func (w *PluginWatcher) trigger() {
	select {
	case w.settleChan <- struct{}{}:
	default:
		// settle already pending
	}
}
