// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	DetectionsReturned prometheus.Histogram
}

// New creates the collectors and registers them. sessionsInUse reports the
// number of engine sessions currently handed out by the pool; pass nil when
// no pool exists (model not loaded).
func New(sessionsInUse func() float64) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detection_http_requests_total",
		Help: "HTTP requests by handler and status code",
	}, []string{"handler", "code"})

	m.StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "detection_stage_duration_seconds",
		Help:    "Per-stage pipeline latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	m.DetectionsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detection_boxes_returned",
		Help:    "Detections returned per /detect request after suppression",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	m.registry.MustRegister(m.RequestsTotal, m.StageDuration, m.DetectionsReturned)

	if sessionsInUse != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "detection_sessions_in_use",
			Help: "Engine sessions currently acquired from the pool",
		}, sessionsInUse))
	}

	return m
}

// Handler serves the exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
