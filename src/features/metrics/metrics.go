package metrics

import (
	"time"

	"github.com/contre95/annil/src/music"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder counts provider operations and their latency.
// A nil *Recorder records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annil",
			Name:      "provider_operations_total",
			Help:      "Provider operations by outcome.",
		}, []string{"provider", "operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annil",
			Name:      "provider_operation_seconds",
			Help:      "Time until a provider operation returned, excluding body streaming.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}
	r.registry.MustRegister(
		r.operations,
		r.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one operation that started at start and ended with err.
func (r *Recorder) Observe(provider, operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(provider, operation, music.ErrorKind(err)).Inc()
	r.latency.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// Registry exposes the registry for the HTTP handler and tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
