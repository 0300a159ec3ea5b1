package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesCrawled     prometheus.Counter
	RecordsExtracted prometheus.Counter
	RowsSkipped      *prometheus.CounterVec
	RecordsEnriched  *prometheus.CounterVec
	Checkpoints      prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		PagesCrawled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_pages_crawled_total",
			Help: "The total number of listing pages processed",
		}),
		RecordsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "The total number of unique school records extracted",
		}),
		RowsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_rows_skipped_total",
			Help: "The total number of table rows skipped",
		}, []string{"reason"}), // e.g., 'duplicate', 'stale', 'parse_failed'
		RecordsEnriched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_records_enriched_total",
			Help: "The total number of records that gained a contact field",
		}, []string{"field"}),
		Checkpoints: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_checkpoints_total",
			Help: "The total number of intermediate checkpoints written",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'pagination', 'record_failed'
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncPagesCrawled() {
	m.PagesCrawled.Inc()
}

func (m *Metrics) IncRecordsExtracted() {
	m.RecordsExtracted.Inc()
}

func (m *Metrics) IncRowsSkipped(reason string) {
	m.RowsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncRecordsEnriched(field string) {
	m.RecordsEnriched.WithLabelValues(field).Inc()
}

func (m *Metrics) IncCheckpoints() {
	m.Checkpoints.Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
