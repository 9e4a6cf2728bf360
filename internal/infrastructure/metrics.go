package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	WebhookEvents      *prometheus.CounterVec
	MessagesProcessed  *prometheus.CounterVec
	CompletionRequests *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	DispatchRequests   *prometheus.CounterVec
	ObjectionMatches   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Inbound webhook deliveries by platform and outcome",
		}, []string{"platform", "result"}),
		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound chat messages by platform and type",
		}, []string{"platform", "type"}),
		CompletionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Reply generations by outcome (ok, error, closing)",
		}, []string{"status"}),
		CompletionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion backend calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		DispatchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_requests_total",
			Help:      "Outbound replies by platform and outcome",
		}, []string{"platform", "status"}),
		ObjectionMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objection_matches_total",
			Help:      "Messages whose text hit an objection's trigger keywords",
		}, []string{"objection"}),
	}

	reg.MustRegister(
		m.WebhookEvents,
		m.MessagesProcessed,
		m.CompletionRequests,
		m.CompletionDuration,
		m.DispatchRequests,
		m.ObjectionMatches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
