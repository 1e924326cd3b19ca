package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus instruments on a private registry
// so tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	EventsPublished  prometheus.Counter
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Number of events handed to the publisher.",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome.",
		}, []string{"status"}),
		DeliveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_seconds",
			Help:    "Time spent on outbound webhook calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
