// Package monitoring exposes Prometheus metrics for the simulation:
// terminal outcomes, live occupancy, service durations, and invariant
// violations. Collectors live in a private registry so repeated runs and
// tests never collide on registration.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Outcome counters
	Arrivals prometheus.Counter
	Served   prometheus.Counter
	Lost     prometheus.Counter
	Bursts   prometheus.Counter

	// Occupancy gauges
	QueueDepth prometheus.Gauge
	FreeSeats  prometheus.Gauge

	// Service metrics
	ServiceDuration prometheus.Histogram
	WaitDuration    prometheus.Histogram

	// Safety metrics
	InvariantViolations prometheus.Counter
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Arrivals: factory.NewCounter(prometheus.CounterOpts{
			Name: "barbersim_arrivals_total",
			Help: "Total number of client arrivals",
		}),
		Served: factory.NewCounter(prometheus.CounterOpts{
			Name: "barbersim_served_total",
			Help: "Total number of clients served",
		}),
		Lost: factory.NewCounter(prometheus.CounterOpts{
			Name: "barbersim_lost_total",
			Help: "Total number of clients turned away",
		}),
		Bursts: factory.NewCounter(prometheus.CounterOpts{
			Name: "barbersim_bursts_total",
			Help: "Total number of completed bursts",
		}),

		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "barbersim_queue_depth",
			Help: "Current number of occupied chairs",
		}),
		FreeSeats: factory.NewGauge(prometheus.GaugeOpts{
			Name: "barbersim_free_seats",
			Help: "Current number of free chairs",
		}),

		ServiceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "barbersim_service_duration_seconds",
			Help:    "Haircut duration per served client",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		WaitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "barbersim_wait_duration_seconds",
			Help:    "Time from admission to completed service per client",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		InvariantViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "barbersim_invariant_violations_total",
			Help: "Invariant violations observed under the lock",
		}),
	}
}

// Registry returns the private registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordArrival records one client arrival.
func (m *Metrics) RecordArrival() {
	m.Arrivals.Inc()
}

// RecordServed records one completed service.
func (m *Metrics) RecordServed(duration time.Duration) {
	m.Served.Inc()
	m.ServiceDuration.Observe(duration.Seconds())
}

// RecordWait records a client's admission-to-service wait.
func (m *Metrics) RecordWait(duration time.Duration) {
	m.WaitDuration.Observe(duration.Seconds())
}

// RecordLost records one rejected client.
func (m *Metrics) RecordLost() {
	m.Lost.Inc()
}

// RecordBurst records one completed burst.
func (m *Metrics) RecordBurst() {
	m.Bursts.Inc()
}

// SetOccupancy updates the occupancy gauges from a snapshot.
func (m *Metrics) SetOccupancy(queueLen, free int) {
	m.QueueDepth.Set(float64(queueLen))
	m.FreeSeats.Set(float64(free))
}

// RecordViolations counts invariant violations.
func (m *Metrics) RecordViolations(n int) {
	if n > 0 {
		m.InvariantViolations.Add(float64(n))
	}
}
