// Package metrics provides Prometheus instrumentation for the automata server.
//
// All metrics are registered in a custom [prometheus.Registry] (not the global
// default) so that only automata metrics appear on the /metrics endpoint.
// Metrics implements automation.Recorder.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds all Prometheus collectors used by the automata server.
type Metrics struct {
	Registry *prometheus.Registry

	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec
	CompilesTotal       *prometheus.CounterVec
	EvaluationsTotal    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	FailuresTotal       *prometheus.CounterVec
	AuthFailuresTotal   prometheus.Counter
	StoreErrorsTotal    *prometheus.CounterVec
}

// New creates and registers all automata metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automata_grpc_requests_total",
			Help: "Total number of gRPC requests.",
		}, []string{"method", "status"}),

		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automata_grpc_request_duration_seconds",
			Help:    "gRPC request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),

		CompilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automata_compiles_total",
			Help: "Total number of automation compilations.",
		}, []string{"outcome"}),

		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automata_evaluations_total",
			Help: "Total number of condition evaluations by result.",
		}, []string{"result"}),

		// Condition trees resolve in microseconds; DefBuckets starts at 5ms.
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "automata_evaluation_duration_seconds",
			Help:    "Condition evaluation latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),

		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automata_evaluation_failures_total",
			Help: "Total number of failed evaluations by error kind and title.",
		}, []string{"kind", "title"}),

		AuthFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automata_auth_failures_total",
			Help: "Total number of failed authentication attempts.",
		}),

		StoreErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automata_store_errors_total",
			Help: "Total number of failed store operations.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.CompilesTotal,
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.FailuresTotal,
		m.AuthFailuresTotal,
		m.StoreErrorsTotal,
	)

	return m
}

// RegisterDBStats registers gauges that report live database/sql pool
// statistics on every scrape.
func (m *Metrics) RegisterDBStats(db *sql.DB) {
	m.Registry.MustRegister(collectors.NewDBStatsCollector(db, "automata"))
}

// Handler returns an [http.Handler] that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// UnaryServerInterceptor returns a gRPC unary interceptor that records
// request count and latency for each method.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		method := path.Base(info.FullMethod)
		st, _ := status.FromError(err)
		code := st.Code().String()
		m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
		m.GRPCRequestDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// RecordCompile counts a compilation with outcome "ok" or "error".
func (m *Metrics) RecordCompile(outcome string) {
	m.CompilesTotal.WithLabelValues(outcome).Inc()
}

// RecordEvaluation counts an evaluation with result "true", "false" or
// "error" and observes its latency.
func (m *Metrics) RecordEvaluation(result string, elapsed time.Duration) {
	m.EvaluationsTotal.WithLabelValues(result).Inc()
	m.EvaluationDuration.Observe(elapsed.Seconds())
}

// RecordFailure counts a failed evaluation by error kind and title.
func (m *Metrics) RecordFailure(kind, title string) {
	m.FailuresTotal.WithLabelValues(kind, title).Inc()
}

// IncAuthFailures increments the auth failure counter.
func (m *Metrics) IncAuthFailures() {
	m.AuthFailuresTotal.Inc()
}

// IncStoreErrors increments the store error counter for operation.
func (m *Metrics) IncStoreErrors(operation string) {
	m.StoreErrorsTotal.WithLabelValues(operation).Inc()
}
