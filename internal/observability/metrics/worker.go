package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks deck archiving driven by slides.generated events.
type WorkerMetrics struct {
	registry *prometheus.Registry

	archiveTotal    *prometheus.CounterVec
	archiveDuration *prometheus.HistogramVec
	archiveInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	const namespace, subsystem = "rfp", "worker"

	return &WorkerMetrics{
		registry: registry,
		archiveTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "deck_archive_total",
			Help:      "Total archived decks by status.",
		}, []string{"service", "status"}),
		archiveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "deck_archive_duration_seconds",
			Help:      "Deck render and archive duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "status"}),
		archiveInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "deck_archive_in_flight",
			Help:        "Number of decks being rendered or archived.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		queueLag: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_lag_seconds",
			Help:      "Delay between slide generation and deck archive start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"service"}),
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartArchive() {
	m.archiveInFlight.Inc()
}

func (m *WorkerMetrics) FinishArchive(service string, duration time.Duration, err error) {
	m.archiveInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.archiveTotal.WithLabelValues(service, status).Inc()
	m.archiveDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveQueueLag ignores negative lag caused by clock skew between hosts.
func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
