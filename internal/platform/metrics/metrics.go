package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// DispatchRuns counts dispatch operations by operation and outcome.
	DispatchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_runs_total", Help: "Dispatch operations by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	// DispatchUnassigned counts orders left out of a proposal by reason.
	DispatchUnassigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_unassigned_orders_total", Help: "Orders left unassigned by reason."},
		[]string{"reason"},
	)
	// DispatchWarnings counts optimizer diagnostics by code.
	DispatchWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_warnings_total", Help: "Optimizer warnings by code."},
		[]string{"code"},
	)
	// DirectionsRequests counts route estimate lookups by outcome (hit, fetched, error).
	DirectionsRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "directions_requests_total", Help: "Route estimate lookups by outcome."},
		[]string{"outcome"},
	)
	// OperationDuration records timed operations in seconds.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Duration of timed internal operations.", Buckets: prometheus.DefBuckets},
		[]string{"op", "status"},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(DispatchRuns)
		Registry.MustRegister(DispatchUnassigned)
		Registry.MustRegister(DispatchWarnings)
		Registry.MustRegister(DirectionsRequests)
		Registry.MustRegister(OperationDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
