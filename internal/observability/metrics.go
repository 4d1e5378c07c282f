// Package observability holds the application's Prometheus metrics and OpenTelemetry tracing helpers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spottr_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spottr_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// StreakUpdates counts streak engine outcomes (noop, extended, reset, started).
	StreakUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spottr_streak_updates_total",
		Help: "Streak updates by outcome",
	}, []string{"outcome"})

	// AchievementUnlocks counts first-time unlocks by requirement type.
	AchievementUnlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spottr_achievement_unlocks_total",
		Help: "Achievements unlocked by requirement type",
	}, []string{"requirement_type"})

	// LeaderboardBuildLatency records how long ranking a cohort takes.
	LeaderboardBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spottr_leaderboard_build_seconds",
		Help:    "Time spent building a leaderboard",
		Buckets: prometheus.DefBuckets,
	}, []string{"tab"})

	// LeaderboardCohortSize records how many users were ranked.
	LeaderboardCohortSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spottr_leaderboard_cohort_size",
		Help:    "Number of users ranked per leaderboard",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"tab"})

	// CacheLookups counts catalog cache lookups by tier and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spottr_cache_lookups_total",
		Help: "Cache lookups by tier (local, redis) and result (hit, miss)",
	}, []string{"tier", "result"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// TrackLeaderboard returns a function that records build latency and cohort size.
func TrackLeaderboard(tab string) func(size int) {
	start := time.Now()
	return func(size int) {
		LeaderboardBuildLatency.WithLabelValues(tab).Observe(time.Since(start).Seconds())
		LeaderboardCohortSize.WithLabelValues(tab).Observe(float64(size))
	}
}
