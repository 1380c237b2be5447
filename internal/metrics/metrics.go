// Package metrics exposes Prometheus collectors for the archiver.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	archiverPagesTotal         *prometheus.CounterVec
	archiverProbeFailuresTotal prometheus.Counter
	archiverBatchesTotal       prometheus.Counter
	archiverActiveWorkers      prometheus.Gauge
	archiverRenderSeconds      *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		archiverPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archiver_pages_total",
				Help: "Total number of pages processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		archiverProbeFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "archiver_probe_failures_total",
				Help: "Total response-time probes that failed.",
			},
		)

		archiverBatchesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "archiver_batches_total",
				Help: "Total number of batches run to completion.",
			},
		)

		archiverActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "archiver_active_workers",
				Help: "Number of workers currently processing a URL.",
			},
		)

		archiverRenderSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archiver_render_duration_seconds",
				Help:    "Histogram of PDF render latencies, labeled by status.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the per-page counter for the given status.
func ObservePage(site string, status string) {
	archiverPagesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObserveProbeFailure increments the probe failure counter.
func ObserveProbeFailure() {
	archiverProbeFailuresTotal.Inc()
}

// ObserveBatch increments the completed-batch counter.
func ObserveBatch() {
	archiverBatchesTotal.Inc()
}

// ObserveRender records the duration of one render attempt.
func ObserveRender(status string, duration time.Duration) {
	archiverRenderSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	archiverActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	archiverActiveWorkers.Dec()
}
