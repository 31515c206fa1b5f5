package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FetchesTotal        *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	RecordsExtracted    prometheus.Counter
	CacheLookupsTotal   *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_fetches_total",
			Help: "Total number of portal attendance fetches.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attendance_fetch_duration_seconds",
			Help:    "Duration of portal sessions from login to parsed records.",
			Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120},
		},
	)

	RecordsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_records_extracted_total",
			Help: "Total number of subject records extracted from portal pages.",
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_cache_lookups_total",
			Help: "Cached attendance lookups by result.",
		},
		[]string{"result"}, // hit, miss, error
	)
}
