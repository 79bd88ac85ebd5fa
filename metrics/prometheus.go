// Package metrics exports booking-core metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/schedsense/booking"
)

// Exporter implements booking.TurnObserver on top of a Prometheus
// registry.
type Exporter struct {
	registry *prometheus.Registry

	turns        *prometheus.CounterVec
	turnLatency  *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	bookings     prometheus.Counter
	providerErrs *prometheus.CounterVec
	nluFallbacks *prometheus.CounterVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for the turn latency histogram, in seconds.
	LatencyBuckets []float64
}

func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates and registers the booking metric set.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.turns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schedsense",
			Subsystem: "booking",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		},
		[]string{"intent", "prompt"},
	)

	e.turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "schedsense",
			Subsystem: "booking",
			Name:      "turn_latency_seconds",
			Help:      "Turn processing latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"intent"},
	)

	e.transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schedsense",
			Subsystem: "booking",
			Name:      "state_transitions_total",
			Help:      "Total state machine transitions",
		},
		[]string{"from", "to"},
	)

	e.bookings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "schedsense",
			Subsystem: "booking",
			Name:      "confirmed_total",
			Help:      "Total bookings confirmed",
		},
	)

	e.providerErrs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schedsense",
			Subsystem: "calendar",
			Name:      "provider_errors_total",
			Help:      "Total calendar provider failures",
		},
		[]string{"op"},
	)

	e.nluFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schedsense",
			Subsystem: "nlu",
			Name:      "fallbacks_total",
			Help:      "Total understanding calls substituted with the rule fallback",
		},
		[]string{"call"},
	)

	registry.MustRegister(
		e.turns,
		e.turnLatency,
		e.transitions,
		e.bookings,
		e.providerErrs,
		e.nluFallbacks,
	)

	return e
}

func (e *Exporter) ObserveTurn(intent booking.Intent, prompt booking.PromptKind, elapsed time.Duration) {
	e.turns.WithLabelValues(string(intent), string(prompt)).Inc()
	e.turnLatency.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
}

func (e *Exporter) ObserveTransition(from, to booking.State) {
	e.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (e *Exporter) ObserveBookingConfirmed() {
	e.bookings.Inc()
}

func (e *Exporter) ObserveProviderError(op string) {
	e.providerErrs.WithLabelValues(op).Inc()
}

func (e *Exporter) ObserveUnderstanderFallback(call string) {
	e.nluFallbacks.WithLabelValues(call).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the backing Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
