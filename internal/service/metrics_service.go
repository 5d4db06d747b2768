package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/bible-studies-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps counters for the summary endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	availabilityChecks   *prometheus.CounterVec
	availabilityDuration *prometheus.HistogramVec
	bookingTransitions   *prometheus.CounterVec
	schedulesCreated     prometheus.Counter
	bookingSessions      prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	checkCount           uint64
	conflictCount        uint64
	unknownCount         uint64
	createdCount         uint64
	openSessions         int64
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by outcome",
		}, []string{"result"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Lecturer availability checks by call site and verdict",
		}, []string{"source", "result"}),
		availabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "availability_check_duration_seconds",
			Help:    "Latency of lecturer availability lookups",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_state_transitions_total",
			Help: "Booking session transitions by target state",
		}, []string{"state"}),
		schedulesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedules_created_total",
			Help: "Schedules committed to storage",
		}),
		bookingSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "booking_sessions_open",
			Help: "Booking sessions currently held in memory",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.dbQueryDuration,
		m.availabilityChecks, m.availabilityDuration, m.bookingTransitions, m.schedulesCreated, m.bookingSessions,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveAvailabilityCheck counts one availability verdict.
func (m *MetricsService) ObserveAvailabilityCheck(source models.CheckSource, status models.AvailabilityStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.availabilityChecks.WithLabelValues(string(source), string(status)).Inc()
	m.availabilityDuration.WithLabelValues(string(source)).Observe(duration.Seconds())
	atomic.AddUint64(&m.checkCount, 1)
	switch status {
	case models.AvailabilityConflict:
		atomic.AddUint64(&m.conflictCount, 1)
	case models.AvailabilityUnknown:
		atomic.AddUint64(&m.unknownCount, 1)
	}
}

// ObserveBookingTransition counts a booking session entering state.
func (m *MetricsService) ObserveBookingTransition(state models.BookingState) {
	if m == nil {
		return
	}
	m.bookingTransitions.WithLabelValues(string(state)).Inc()
}

// ObserveScheduleCreated counts a committed schedule.
func (m *MetricsService) ObserveScheduleCreated() {
	if m == nil {
		return
	}
	m.schedulesCreated.Inc()
	atomic.AddUint64(&m.createdCount, 1)
}

// SetOpenBookingSessions publishes the number of live booking sessions.
func (m *MetricsService) SetOpenBookingSessions(n int) {
	if m == nil {
		return
	}
	m.bookingSessions.Set(float64(n))
	atomic.StoreInt64(&m.openSessions, int64(n))
}

// Snapshot returns aggregated counters for the JSON summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if lookups := hits + misses; lookups > 0 {
		cacheRatio = float64(hits) / float64(lookups)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		AvailabilityChecks:       atomic.LoadUint64(&m.checkCount),
		AvailabilityConflicts:    atomic.LoadUint64(&m.conflictCount),
		AvailabilityUnknown:      atomic.LoadUint64(&m.unknownCount),
		SchedulesCreated:         atomic.LoadUint64(&m.createdCount),
		OpenBookingSessions:      int(atomic.LoadInt64(&m.openSessions)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
