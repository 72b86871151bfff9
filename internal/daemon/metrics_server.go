package daemon

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/logfields"
)

// MetricsServer serves the Prometheus scrape endpoint and a health check.
type MetricsServer struct {
	addr   string
	bound  net.Addr
	server *http.Server
}

// NewMetricsServer builds the server around the given /metrics handler.
func NewMetricsServer(addr string, metricsHandler http.Handler) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok\n")); err != nil {
			slog.Error("Health check write failed", logfields.Error(err))
		}
	})

	return &MetricsServer{
		addr: addr,
		server: &http.Server{
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start binds the listener up front so a taken port fails fast, then serves
// in the background.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return herrors.IO(err, "binding metrics address %s", s.addr)
	}
	s.bound = ln.Addr()

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server error", logfields.Error(err))
		}
	}()

	slog.Info("Metrics server started", slog.String("addr", s.bound.String()))
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
// Empty before Start.
func (s *MetricsServer) Addr() string {
	if s.bound == nil {
		return ""
	}
	return s.bound.String()
}

// Stop gracefully shuts the server down.
func (s *MetricsServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
