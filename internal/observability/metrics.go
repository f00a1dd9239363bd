package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodia_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melodia_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheResults counts cache-aside lookups by resource and result (hit, miss, error).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodia_cache_results_total",
		Help: "Cache lookups by resource and result",
	}, []string{"resource", "result"})

	// MediaUploads counts uploads forwarded to the storage provider.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodia_media_uploads_total",
		Help: "Media uploads by provider, folder and outcome",
	}, []string{"provider", "folder", "outcome"})

	// MediaUploadLatency records how long the storage provider took per upload.
	MediaUploadLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melodia_media_upload_latency_seconds",
		Help:    "Media upload latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// RelationToggles counts follow, like and collaboration changes.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodia_relation_toggles_total",
		Help: "Relationship inserts and removals by relation and action",
	}, []string{"relation", "action"})

	// SongPlays counts recorded song plays.
	SongPlays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melodia_song_plays_total",
		Help: "Total number of recorded song plays",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordToggle increments the relation toggle counter.
func RecordToggle(relation, action string) {
	RelationToggles.WithLabelValues(relation, action).Inc()
}

// RecordUpload records the outcome and latency of a storage upload.
func RecordUpload(provider, folder string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	MediaUploads.WithLabelValues(provider, folder, outcome).Inc()
	MediaUploadLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
