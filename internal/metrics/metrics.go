package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the webhook dispatcher
type Metrics struct {
	Intents   *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// New registers the dispatcher metrics on the default registry
func New(service string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, service)
}

// NewWith registers the dispatcher metrics on the given registry
func NewWith(reg prometheus.Registerer, service string) *Metrics {
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodbot",
		Subsystem: service,
		Name:      "intents_total",
		Help:      "Total number of dispatched intents.",
	}, []string{"intent", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "foodbot",
		Subsystem: service,
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(intents, latency)
	return &Metrics{Intents: intents, LatencyMS: latency}
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}
