package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ServiceEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "service_events_total", Help: "Named service counters."},
		[]string{"name"}, // e.g. hotel_service.get_all.large_payload
	)
	SinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "metrics_sink_errors_total", Help: "Dropped counter increments."},
		[]string{"sink"},
	)
)

// MetricsServer serves reg on its own listener, separate from the API.
func MetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ServiceEvents, SinkErrors)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSinkError(sink string) {
	SinkErrors.WithLabelValues(sink).Inc()
}

// PromSink is the default domain.MetricsSink; increments land on
// ServiceEvents labelled by counter name.
type PromSink struct{}

func (PromSink) Increment(name string) {
	ServiceEvents.WithLabelValues(name).Inc()
}
