package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the domain metrics.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	studentsImported prometheus.Counter
	importRowErrors  prometheus.Counter
	allocationRuns   prometheus.Counter
	studentsRanked   prometheus.Gauge
	scholarsAssigned prometheus.Gauge
}

// NewMetricsService constructs the registry with process, Go runtime and
// domain collectors registered.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		studentsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "students_imported_total",
			Help: "Student records committed through CSV import.",
		}),
		importRowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "import_row_errors_total",
			Help: "CSV rows rejected during import.",
		}),
		allocationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_runs_total",
			Help: "Completed scholarship allocation passes.",
		}),
		studentsRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "allocation_students_ranked",
			Help: "Students ranked in the latest allocation pass.",
		}),
		scholarsAssigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "allocation_scholars_assigned",
			Help: "Scholarship tiers assigned in the latest allocation pass.",
		}),
	}
	registry.MustRegister(
		m.httpRequests, m.httpDuration,
		m.studentsImported, m.importRowErrors,
		m.allocationRuns, m.studentsRanked, m.scholarsAssigned,
	)
	return m
}

// ObserveHTTP records one served request.
func (m *MetricsService) ObserveHTTP(method, route, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveImport records one committed import batch.
func (m *MetricsService) ObserveImport(imported, failed int) {
	m.studentsImported.Add(float64(imported))
	m.importRowErrors.Add(float64(failed))
}

// ObserveAllocation records one completed allocation pass.
func (m *MetricsService) ObserveAllocation(ranked, scholars int) {
	m.allocationRuns.Inc()
	m.studentsRanked.Set(float64(ranked))
	m.scholarsAssigned.Set(float64(scholars))
}

// Handler exposes the registry for scraping.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
