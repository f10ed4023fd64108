// Package metrics exposes the run counters and the live resource state as
// Prometheus metrics on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/queue"
)

const namespace = "atc"

// Airport exposes the live resource state.
type Airport interface {
	Available(kind model.Kind) int
	Queue(kind model.Kind) *queue.Queue
}

// Collector owns the registry and the metrics derived from a run.
type Collector struct {
	registry *prometheus.Registry
	waitTime *prometheus.HistogramVec
}

// New registers the run metrics. Counters are read from stats at scrape
// time; gauges are read from airport.
func New(stats *progress.Stats, airport Airport) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	c := &Collector{registry: registry}

	counters := []struct {
		name, help string
		value      func(s progress.Snapshot) int
	}{
		{"flights_created_total", "Flights that entered the airport.", func(s progress.Snapshot) int { return s.Created }},
		{"flights_succeeded_total", "Flights that completed every phase.", func(s progress.Snapshot) int { return s.Succeeded }},
		{"flights_starved_total", "Flights failed by starvation.", func(s progress.Snapshot) int { return s.Starved }},
		{"flights_interrupted_total", "Flights ended by shutdown or repeated reallocation.", func(s progress.Snapshot) int { return s.Interrupted }},
		{"alerts_total", "Alerts raised for long waits.", func(s progress.Snapshot) int { return s.Alerts }},
		{"deadlocks_suspected_total", "Positive deadlock detections.", func(s progress.Snapshot) int { return s.Deadlocks }},
		{"reallocations_total", "Forced resource reallocations.", func(s progress.Snapshot) int { return s.Reallocations }},
	}
	for _, counter := range counters {
		value := counter.value
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      counter.name,
			Help:      counter.help,
		}, func() float64 { return float64(value(stats.Counters())) })
	}

	for _, kind := range model.Kinds() {
		kind := kind
		labels := prometheus.Labels{"kind": kind.String()}
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "resource_available",
			Help:        "Free units per resource kind.",
			ConstLabels: labels,
		}, func() float64 { return float64(airport.Available(kind)) })
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "queue_depth",
			Help:        "Requests waiting per resource kind.",
			ConstLabels: labels,
		}, func() float64 { return float64(airport.Queue(kind).Len()) })
	}

	c.waitTime = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resource_wait_seconds",
		Help:      "Time from request to grant per resource kind.",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"kind"})
	return c
}

// ObserveWait records the wait of a granted request.
func (c *Collector) ObserveWait(kind model.Kind, wait time.Duration) {
	c.waitTime.WithLabelValues(kind.String()).Observe(wait.Seconds())
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
