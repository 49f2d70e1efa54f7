package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the leaderboard sync service

var (
	// Subprocess metrics
	SubprocessCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasprint_subprocess_calls_total",
			Help: "Total number of Kaggle CLI invocations",
		},
		[]string{"status"},
	)

	SubprocessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datasprint_subprocess_duration_seconds",
			Help:    "Duration of Kaggle CLI invocations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasprint_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datasprint_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	RowsParsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasprint_rows_parsed_total",
			Help: "Total number of leaderboard rows parsed",
		},
	)

	DefaultedFieldsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasprint_defaulted_fields_total",
			Help: "Total number of row fields defaulted due to malformed external data",
		},
	)

	AccountsMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasprint_accounts_matched_total",
			Help: "Total number of leaderboard rows matched to internal accounts",
		},
	)

	// Rating metrics
	RatingUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasprint_rating_updates_total",
			Help: "Total number of account rating updates",
		},
		[]string{"status"},
	)

	CompetitionsFinalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasprint_competitions_finalized_total",
			Help: "Total number of competitions finalized",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasprint_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datasprint_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datasprint_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordSubprocessCall records a Kaggle CLI invocation
func RecordSubprocessCall(status string, duration float64) {
	SubprocessCallsTotal.WithLabelValues(status).Inc()
	SubprocessDuration.Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordParsedRows records parsed row and defaulted field counts for one sync
func RecordParsedRows(rows, defaultedFields, matched int) {
	RowsParsedTotal.Add(float64(rows))
	DefaultedFieldsTotal.Add(float64(defaultedFields))
	AccountsMatchedTotal.Add(float64(matched))
}

// RecordRatingUpdate records an account rating update
func RecordRatingUpdate(status string) {
	RatingUpdatesTotal.WithLabelValues(status).Inc()
}

// RecordFinalization records a finalized competition
func RecordFinalization() {
	CompetitionsFinalizedTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
