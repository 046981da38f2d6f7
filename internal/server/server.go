// Package server exposes the health, status and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"rustbot/internal/monitor"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 5 * time.Second
)

// StatusProvider reports the state of the monitoring loop.
type StatusProvider interface {
	Snapshot() monitor.Snapshot
}

// NewRouter builds the HTTP routes
func NewRouter(status StatusProvider, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status.Snapshot()); err != nil {
			log.Error().Err(err).Msg("Could not encode the status")
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().Msg(fmt.Sprintf("HTTP %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start)))
	})
}

// Run serves handler on address until ctx is done
func Run(ctx context.Context, address string, handler http.Handler) error {

	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: requestTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Msg(fmt.Sprintf("HTTP server listening on %s", address))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server on %s failed: %w", address, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}
