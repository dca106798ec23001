package observability

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "absa", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "absa", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "classifications_total", Help: "Clause classifications by backend and label."},
		[]string{"backend", "label"}, // label: positive|negative|neutral|error
	)
	ClassifyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "absa", Name: "classify_duration_seconds",
			Help: "Clause classification latency seconds.",
			// sub-100ms target
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend"},
	)
	ReviewsAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "reviews_analyzed_total", Help: "Reviews run through the pipeline."},
		[]string{"outcome"}, // outcome: ok|empty|error
	)
	AspectsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "absa", Name: "aspect_verdicts_total", Help: "Aggregated aspect verdicts."},
		[]string{"aspect", "sentiment"},
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		ExternalRequests, ExternalLatency,
		CacheEvents,
		Classifications, ClassifyLatency,
		ReviewsAnalyzed, AspectsDetected,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveClassification(backend, label string, dur time.Duration) {
	Classifications.WithLabelValues(backend, label).Inc()
	ClassifyLatency.WithLabelValues(backend).Observe(dur.Seconds())
}

func ObserveReview(outcome string) {
	ReviewsAnalyzed.WithLabelValues(outcome).Inc()
}

func ObserveVerdict(aspect, sentiment string) {
	AspectsDetected.WithLabelValues(aspect, sentiment).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
