package providers

import (
	"time"
	"updatescan/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcomes reported through IncCyclesTotal.
const (
	CycleScanned = "scanned"
	CycleIdle    = "idle"
	CycleSkipped = "skipped"
	CycleFailed  = "failed"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncCachePurges()
	IncCyclesTotal(result string)
	ObserveCycleDuration(duration time.Duration)
	AddPagesScanned(count int)
	AddChangesDetected(count int)
	AddNotifications(count int)
	SetPagesTotal(state string, count int)
}

type MetricsProvider struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	cachePurges       prometheus.Counter
	cyclesTotal       *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	pagesScanned      prometheus.Counter
	changesDetected   prometheus.Counter
	notificationsSent prometheus.Counter
	pagesTotal        *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncCachePurges() {
	m.cachePurges.Inc()
}

func (m *MetricsProvider) IncCyclesTotal(result string) {
	m.cyclesTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveCycleDuration(duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddPagesScanned(count int) {
	m.pagesScanned.Add(float64(count))
}

func (m *MetricsProvider) AddChangesDetected(count int) {
	m.changesDetected.Add(float64(count))
}

func (m *MetricsProvider) AddNotifications(count int) {
	m.notificationsSent.Add(float64(count))
}

func (m *MetricsProvider) SetPagesTotal(state string, count int) {
	m.pagesTotal.WithLabelValues(state).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "updatescan_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "updatescan_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		cachePurges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_cache_purges_total",
			Help: "Total number of page listing cache purges",
		}),

		cyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "updatescan_autoscan_cycles_total",
			Help: "Autoscan cycles by outcome",
		}, []string{"result"}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "updatescan_autoscan_cycle_duration_seconds",
			Help:    "Duration of autoscan cycles",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		pagesScanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_pages_scanned_total",
			Help: "Total number of page scans attempted",
		}),

		changesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_changes_detected_total",
			Help: "Total number of major changes detected",
		}),

		notificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "updatescan_notified_changes_total",
			Help: "Total number of changes surfaced through notifications",
		}),

		pagesTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "updatescan_pages",
			Help: "Number of tracked pages per state",
		}, []string{"state"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncCachePurges()                                  {}
func (n *noopMetrics) IncCyclesTotal(_ string)                          {}
func (n *noopMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (n *noopMetrics) AddPagesScanned(_ int)                            {}
func (n *noopMetrics) AddChangesDetected(_ int)                         {}
func (n *noopMetrics) AddNotifications(_ int)                           {}
func (n *noopMetrics) SetPagesTotal(_ string, _ int)                    {}
