// Package server exposes the aggregation engine over HTTP.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ConcertHub/cache"
	"ConcertHub/core/aggregation"
	"ConcertHub/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. metadata may be nil.
func NewRouter(engine *aggregation.Engine, metadata cache.MetadataStore) http.Handler {
	concerts := NewConcertHandler(engine)
	admin := NewAdminHandler(engine, metadata)

	// Concert keys contain "|" and may contain "/", so route on the raw path.
	router := mux.NewRouter().UseEncodedPath()
	router.Use(accessLogMiddleware)

	router.HandleFunc("/concerts", concerts.BrowseConcertsHandler).Methods(http.MethodGet)
	router.HandleFunc("/concerts/{concert_key}", concerts.GetConcertHandler).Methods(http.MethodGet)

	router.HandleFunc("/cache", admin.CacheInfoHandler).Methods(http.MethodGet)
	router.HandleFunc("/cache", admin.ClearCacheHandler).Methods(http.MethodDelete)
	router.HandleFunc("/stats", admin.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", admin.HealthHandler).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return corsMiddleware(requestIDMiddleware(router))
}

// Start serves handler on addr until SIGINT or SIGTERM, then shuts down
// gracefully.
func Start(addr string, handler http.Handler) error {
	// WriteTimeout covers a full upstream call plus grouping.
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
