package models

import "time"

// SystemMetrics is a lightweight snapshot of process counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	AvailabilityChecks       uint64    `json:"availability_checks"`
	AvailabilityConflicts    uint64    `json:"availability_conflicts"`
	AvailabilityUnknown      uint64    `json:"availability_unknown"`
	SchedulesCreated         uint64    `json:"schedules_created"`
	OpenBookingSessions      int       `json:"open_booking_sessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
