package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/go-chi/chi/v5"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// InternalServer serves liveness and metrics on a private port.
type InternalServer struct {
	ctx    context.Context
	logger logging.Logger
	ping   Pinger
	server *http.Server
}

func NewInternalServer(ctx context.Context, logger logging.Logger, addr string, ping Pinger) *InternalServer {
	s := &InternalServer{
		ctx:    ctx,
		logger: logger,
		ping:   ping,
	}
	metrics.Init()
	r := chi.NewRouter()
	r.Get("/healthCheckup", s.onHealthCheckup)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      25 * time.Second,
	}
	return s
}

func (s *InternalServer) onHealthCheckup(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.logger.Warn("health check failed: %v", err)
			jsonError(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "alive"})
}

// Handler exposes the routes without the listener, for tests.
func (s *InternalServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *InternalServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done.
func (s *InternalServer) Run() error {
	s.logger.Info("Starting internal httpserver on %s", s.server.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.ctx.Done():
		s.logger.Info("internal server receives shutdown signal.")
		return s.Shutdown()
	case err := <-errCh:
		s.logger.Error("internal server closed unexpectedly: %v", err)
		return err
	}
}
