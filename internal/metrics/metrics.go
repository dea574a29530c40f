// Package metrics records run counters for ibew-locals on a private Prometheus
// registry. A run can dump the registry in text exposition format for a
// node_exporter textfile collector. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ibew_locals"

// Request sources
const (
	SourceDirectory  = "directory"
	SourceMembership = "membership"
)

// Recorder holds the collectors for one run
type Recorder struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	detailFailures *prometheus.CounterVec
	records        *prometheus.GaugeVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Upstream HTTP requests by source and outcome.",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Upstream HTTP request latency by source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		detailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_failures_total",
			Help:      "Per-local detail calls that failed and were degraded.",
		}, []string{"call"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Record counts at each pipeline stage.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.requests, r.duration, r.detailFailures, r.records)
	return r
}

// ObserveRequest counts one upstream request and its latency
func (r *Recorder) ObserveRequest(source string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.requests.WithLabelValues(source, outcome).Inc()
	r.duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// DetailFailure counts a degraded detail call ("classifications" or "counties")
func (r *Recorder) DetailFailure(call string) {
	if r == nil {
		return
	}
	r.detailFailures.WithLabelValues(call).Inc()
}

// SetRecords sets the record count for a pipeline stage
func (r *Recorder) SetRecords(stage string, n int) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(stage).Set(float64(n))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the registry to path in text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
