package api

import (
	"dispatch-route-service/internal/api/handlers"
	"dispatch-route-service/internal/platform/metrics"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(service handlers.DispatchService, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()

	dispatchHandler := &handlers.DispatchHandler{Service: service, Log: log}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/dispatch/propose", dispatchHandler.Propose)
	mux.HandleFunc("/dispatch/apply", dispatchHandler.Apply)
	mux.HandleFunc("/dispatch/reoptimize-route", dispatchHandler.Reoptimize)

	return requestIDMiddleware(loggingMiddleware(log, mux))
}
