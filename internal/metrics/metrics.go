// Package metrics exposes prometheus counters for the data-aggregation layer.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomePresent = "present"
	OutcomeAbsent  = "absent"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder holds the counters. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	sourceFetches    *prometheus.CounterVec
	endpointAttempts *prometheus.CounterVec
	aggregations     prometheus.Counter
	aggregationTime  prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitty",
			Name:      "source_fetches_total",
			Help:      "Dashboard source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		endpointAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitty",
			Name:      "endpoint_attempts_total",
			Help:      "Candidate endpoint attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		aggregations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitty",
			Name:      "dashboard_aggregations_total",
			Help:      "Completed dashboard aggregation cycles.",
		}),
		aggregationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kitty",
			Name:      "dashboard_aggregation_seconds",
			Help:      "Wall time of a dashboard aggregation cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(r.sourceFetches, r.endpointAttempts, r.aggregations, r.aggregationTime)
	return r
}

// SourceFetched counts one settled source.
func (r *Recorder) SourceFetched(source string, present bool) {
	if r == nil {
		return
	}
	outcome := OutcomeAbsent
	if present {
		outcome = OutcomePresent
	}
	r.sourceFetches.WithLabelValues(source, outcome).Inc()
}

// EndpointAttempted counts one candidate trial.
func (r *Recorder) EndpointAttempted(method string, ok bool) {
	if r == nil {
		return
	}
	outcome := OutcomeFailure
	if ok {
		outcome = OutcomeSuccess
	}
	r.endpointAttempts.WithLabelValues(method, outcome).Inc()
}

// AggregationCompleted counts one dashboard cycle and its duration.
func (r *Recorder) AggregationCompleted(d time.Duration) {
	if r == nil {
		return
	}
	r.aggregations.Inc()
	r.aggregationTime.Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
