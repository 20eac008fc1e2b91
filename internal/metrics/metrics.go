// Package metrics exposes Prometheus counters for the HTTP layer and the order workflow.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	service  string
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusCategory  *prometheus.CounterVec

	ordersPlaced     prometheus.Counter
	transitions      *prometheus.CounterVec
	workflowFailures *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, so several instances can
// coexist in tests.
func New(service string) *Metrics {
	m := &Metrics{
		service:  service,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path", "status"}),
		statusCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"service", "category", "method", "path"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_orders_placed_total",
			Help: "Orders created by buyers",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_order_transitions_total",
			Help: "Order status transitions by source and target status",
		}, []string{"from", "to"}),
		workflowFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_workflow_failures_total",
			Help: "Failed workflow operations by operation and reason",
		}, []string{"op", "reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.statusCategory,
		m.ordersPlaced,
		m.transitions,
		m.workflowFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency labelled by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		code := strconv.Itoa(status)

		m.requests.WithLabelValues(m.service, r.Method, path, code).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path, code).Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			m.statusCategory.WithLabelValues(m.service, category, r.Method, path).Inc()
		}
	})
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

func (m *Metrics) OrderPlaced(*order.Order) {
	m.ordersPlaced.Inc()
}

func (m *Metrics) OrderTransitioned(from, to order.Status) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) WorkflowFailed(op string, err error) {
	m.workflowFailures.WithLabelValues(op, failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, order.ErrPartialFailure):
		return "partial_failure"
	case errors.Is(err, order.ErrConflict):
		return "conflict"
	case errors.Is(err, order.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, order.ErrNoLongerAvailable):
		return "no_longer_available"
	case errors.Is(err, order.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, order.ErrNotPermitted):
		return "not_permitted"
	case errors.Is(err, order.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, order.ErrNotFound):
		return "not_found"
	}
	return "error"
}

var _ order.Observer = (*Metrics)(nil)
