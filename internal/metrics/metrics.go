// Package metrics exposes Prometheus instruments for the assistant.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for conversation turns.
type AssistantMetrics struct {
	turnsTotal      *prometheus.CounterVec
	bookingsTotal   prometheus.Counter
	providerErrors  *prometheus.CounterVec
	providerLatency prometheus.Histogram
	notifyFailures  prometheus.Counter
	turnLatency     *prometheus.HistogramVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"intent"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "bookings_total",
			Help:      "Total confirmed appointments",
		}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "provider_errors_total",
			Help:      "Fallback completion failures",
		}, []string{"kind"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "provider_latency_seconds",
			Help:      "Latency of fallback completion calls",
			Buckets:   prometheus.DefBuckets,
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "notify_failures_total",
			Help:      "Booking confirmation emails that could not be sent",
		}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitalpoint",
			Subsystem: "assistant",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of a conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.providerErrors, m.providerLatency, m.notifyFailures, m.turnLatency)
	return m
}

func (m *AssistantMetrics) ObserveTurn(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

func (m *AssistantMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

// ObserveProviderCall records a completion call; kind is empty on success, otherwise "timeout" or "error".
func (m *AssistantMetrics) ObserveProviderCall(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.Observe(seconds)
	if kind != "" {
		m.providerErrors.WithLabelValues(kind).Inc()
	}
}

func (m *AssistantMetrics) ObserveNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
