package observability

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// OpsServer serves /healthz and /metrics.
type OpsServer struct {
	srv    *http.Server
	ready  atomic.Bool
	logger *zap.Logger
}

// NewOpsServer builds the ops router. gatherer supplies /metrics.
func NewOpsServer(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *OpsServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &OpsServer{logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !o.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("starting"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	o.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return o
}

// Handler exposes the router for tests.
func (o *OpsServer) Handler() http.Handler {
	return o.srv.Handler
}

// SetReady flips /healthz to healthy once the bot is connected.
func (o *OpsServer) SetReady(ready bool) {
	o.ready.Store(ready)
}

// Start serves in the background.
func (o *OpsServer) Start() {
	go func() {
		o.logger.Info("ops server listening", zap.String("addr", o.srv.Addr))
		if err := o.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.logger.Error("ops server stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops the server.
func (o *OpsServer) Shutdown(ctx context.Context) error {
	return o.srv.Shutdown(ctx)
}
