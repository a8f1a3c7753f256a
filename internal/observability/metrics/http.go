package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generatedSlides    *prometheus.HistogramVec
	slideIssuesTotal   *prometheus.CounterVec
	uploadsTotal       *prometheus.CounterVec
	uploadPages        *prometheus.HistogramVec
	decksRenderedTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rfp",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	generationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfp",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total slide generation attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfp",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Slide generation duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90, 120, 180},
		},
		[]string{"service", "outcome"},
	)
	generatedSlides := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfp",
			Subsystem: "generation",
			Name:      "slides",
			Help:      "Distribution of slides per successful generation.",
			Buckets:   []float64{1, 3, 5, 8, 10, 12, 15, 20},
		},
		[]string{"service"},
	)
	slideIssuesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfp",
			Subsystem: "generation",
			Name:      "slide_issues_total",
			Help:      "Total structural issues reported in accepted model output.",
		},
		[]string{"service"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfp",
			Subsystem: "upload",
			Name:      "documents_total",
			Help:      "Total uploaded documents by type and outcome.",
		},
		[]string{"service", "document_type", "outcome"},
	)
	uploadPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfp",
			Subsystem: "upload",
			Name:      "pages",
			Help:      "Distribution of pages per uploaded document.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"service", "document_type"},
	)
	decksRenderedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfp",
			Subsystem: "deck",
			Name:      "rendered_total",
			Help:      "Total rendered decks and exports by format.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		generationsTotal,
		generationDuration,
		generatedSlides,
		slideIssuesTotal,
		uploadsTotal,
		uploadPages,
		decksRenderedTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		generationsTotal:   generationsTotal,
		generationDuration: generationDuration,
		generatedSlides:    generatedSlides,
		slideIssuesTotal:   slideIssuesTotal,
		uploadsTotal:       uploadsTotal,
		uploadPages:        uploadPages,
		decksRenderedTotal: decksRenderedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps generation ids out of label values.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/api/generations/") {
		return path
	}
	if strings.HasSuffix(path, "/deck") {
		return "/api/generations/{id}/deck"
	}
	return "/api/generations/{id}"
}

// RecordGeneration counts one generate call; outcome is "success" or the failure kind.
func (m *HTTPServerMetrics) RecordGeneration(service, outcome string, slides, issues int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.generationsTotal.WithLabelValues(service, outcome).Inc()
	m.generationDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
	if outcome != "success" {
		return
	}
	m.generatedSlides.WithLabelValues(service).Observe(float64(slides))
	if issues > 0 {
		m.slideIssuesTotal.WithLabelValues(service).Add(float64(issues))
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, documentType, outcome string, pages int) {
	if documentType == "" {
		documentType = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, documentType, outcome).Inc()
	if outcome == "success" && pages > 0 {
		m.uploadPages.WithLabelValues(service, documentType).Observe(float64(pages))
	}
}

func (m *HTTPServerMetrics) RecordRender(service, format string) {
	m.decksRenderedTotal.WithLabelValues(service, format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
