package shell

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/errors"
)

// Server exposes bridge status, metrics and health over HTTP.
type Server struct {
	router *mux.Router
	status *Status
	srv    *http.Server
}

// NewServer builds the status router. reg receives the health check gauges;
// gatherer serves /metrics.
func NewServer(status *Status, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		router: mux.NewRouter(),
		status: status,
	}

	health := healthcheck.NewMetricsHandler(reg, "nativebridge")
	health.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(1000))
	health.AddReadinessCheck("bridge", status.Ready)

	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/live", health.LiveEndpoint).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", health.ReadyEndpoint).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status.Snapshot()); err != nil {
		Logger().Warn("encode status", zap.Error(err))
	}
}

// Serve listens on addr until ctx ends.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		Logger().Info("status server listening", zap.String("addr", ln.Addr().String()))
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
