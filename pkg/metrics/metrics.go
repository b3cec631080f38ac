// Package metrics provides Prometheus instrumentation for vendordesk.
//
// The client side records every API call, the query cache hit ratio and
// order status transitions. The mock API records what it served.
//
// `vendorctl orders watch --metrics :9100` exposes Handler() so a local
// Prometheus can scrape a long-running session.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vendordesk"

// ─────────────────────────────────────────────
// Client metrics
// ─────────────────────────────────────────────

var (
	// APIRequestDuration tracks each attempt against the remote API, by
	// method, route template ("/orders/%d") and status code.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestTotal counts API attempts. Transport failures use status "error".
	APIRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests.",
		},
		[]string{"method", "route", "status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total query cache hits.",
		},
		[]string{"cache"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total query cache misses.",
		},
		[]string{"cache"},
	)

	// OrderTransitions counts status update attempts by target status and
	// result ("ok" | "rejected" | "failed").
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions requested by this client.",
		},
		[]string{"to", "result"},
	)
)

// ─────────────────────────────────────────────
// Mock API metrics
// ─────────────────────────────────────────────

var (
	ServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "requests_total",
			Help:      "Requests served by the mock API.",
		},
		[]string{"method", "status"},
	)
	ServedInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "mockapi",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served by the mock API.",
	})
	ServedPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "panics_total",
			Help:      "Mock API handler panics, by route pattern.",
		},
		[]string{"route"},
	)
)

// DefaultRegistry is the registry every vendordesk metric lives in.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		APIRequestDuration,
		APIRequestTotal,
		CacheHits,
		CacheMisses,
		OrderTransitions,
		ServedTotal,
		ServedInFlight,
		ServedPanics,
	)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// ObserveAPIRequest records one attempt. status 0 means no response.
func ObserveAPIRequest(method, route string, status int, start time.Time) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	APIRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
	APIRequestTotal.WithLabelValues(method, route, code).Inc()
}

// RecordTransition counts a status update attempt.
func RecordTransition(to, result string) {
	OrderTransitions.WithLabelValues(to, result).Inc()
}

// ─────────────────────────────────────────────
// Server side
// ─────────────────────────────────────────────

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests served by the mock API.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ServedInFlight.Inc()
			defer ServedInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)
			ServedTotal.WithLabelValues(r.Method, strconv.Itoa(rr.status)).Inc()
		})
	}
}

// Handler exposes the registry in Prometheus text and OpenMetrics formats.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
