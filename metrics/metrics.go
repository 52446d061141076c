// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sift_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_fetches_total",
			Help: "Page fetches by outcome.",
		},
		[]string{"status", "error_code"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sift_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
	)

	FieldsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sift_detected_fields",
			Help:    "Number of fields returned per analysis.",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 25},
		},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_extractions_total",
			Help: "Extractions by structural regime.",
		},
		[]string{"regime"},
	)

	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_records_extracted_total",
			Help: "Records produced, by structural regime.",
		},
		[]string{"regime"},
	)

	AnalysisCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_analysis_cache_total",
			Help: "Analysis cache lookups by result.",
		},
		[]string{"result"},
	)

	BatchJobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sift_batch_jobs_in_flight",
			Help: "Batch extraction jobs currently running.",
		},
	)
)

// ObserveFetch records one fetch. errorCode is empty on success.
func ObserveFetch(d time.Duration, errorCode string) {
	FetchDuration.Observe(d.Seconds())
	if errorCode == "" {
		FetchesTotal.WithLabelValues("success", "").Inc()
		return
	}
	FetchesTotal.WithLabelValues("failure", errorCode).Inc()
}

// ObserveExtraction records one extraction and its record count.
func ObserveExtraction(regime string, records int) {
	ExtractionsTotal.WithLabelValues(regime).Inc()
	RecordsExtracted.WithLabelValues(regime).Add(float64(records))
}
