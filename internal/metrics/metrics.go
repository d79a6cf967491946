// Package metrics exposes Prometheus counters for GraphQL operations and
// resolver failures.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blogql_graphql_operations_total",
		Help: "Tracks the number of executed GraphQL operations.",
	}, []string{"operation", "status"})

	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogql_graphql_operation_duration_seconds",
		Help:    "Tracks the latencies for GraphQL operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	resolverFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blogql_resolver_failures_total",
		Help: "Tracks resolver failures reported to clients as generic errors.",
	}, []string{"operation"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		operationsTotal,
		operationDuration,
		resolverFailures,
	)
}

// Registry returns the registry holding every blogql collector.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ResolverFailure counts a failed resolver operation such as "create user".
func ResolverFailure(operation string) {
	resolverFailures.WithLabelValues(operation).Inc()
}

// ObserveOperation records one executed operation.
func ObserveOperation(operation, status string, seconds float64) {
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(seconds)
}

// Extension is a gqlgen handler extension that records every operation
// response. Operations are labelled by type ("query", "mutation").
type Extension struct{}

var _ interface {
	graphql.HandlerExtension
	graphql.ResponseInterceptor
} = Extension{}

func (Extension) ExtensionName() string {
	return "Metrics"
}

func (Extension) Validate(graphql.ExecutableSchema) error {
	return nil
}

func (Extension) InterceptResponse(ctx context.Context, next graphql.ResponseHandler) *graphql.Response {
	start := time.Now()
	resp := next(ctx)
	if resp == nil {
		return nil
	}

	operation := "unknown"
	if graphql.HasOperationContext(ctx) {
		if op := graphql.GetOperationContext(ctx).Operation; op != nil {
			operation = string(op.Operation)
		}
	}
	status := "ok"
	if len(resp.Errors) > 0 {
		status = "error"
	}
	ObserveOperation(operation, status, time.Since(start).Seconds())

	return resp
}
