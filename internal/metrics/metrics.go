package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders committed by the placement service",
		},
	)

	// OrderFailures is labelled by failure class: invalid_request, item_not_found,
	// insufficient_stock, storage.
	OrderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_failures_total",
			Help: "Order placements that did not commit",
		},
		[]string{"reason"},
	)

	OrderRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_retries_total",
			Help: "Placement transactions re-run after a retryable conflict",
		},
	)

	OrderLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_line_items",
			Help:    "Line items per committed order",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Consumed events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)
)

// Middleware records request count and latency per chi route pattern.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// unmatched paths share one label to keep cardinality bounded
			endpoint := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				endpoint = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			RequestsTotal.WithLabelValues(service, r.Method, endpoint, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(service, r.Method, endpoint).Observe(time.Since(start).Seconds())
		})
	}
}
