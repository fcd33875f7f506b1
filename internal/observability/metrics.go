// Package observability holds the prometheus collectors for the ingestion and display paths.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "baby_tracker"

// Ingestion outcomes.
const (
	ResultSuccess           = "success"
	ResultExtractionFailed  = "extraction_failed"
	ResultPersistenceFailed = "persistence_failed"
	ResultInvalidRequest    = "invalid_request"
)

var (
	ingestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "requests_total",
		Help:      "Ingestion requests grouped by outcome.",
	}, []string{"result"})

	extractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "extraction",
		Name:      "call_duration_seconds",
		Help:      "Latency of generative extraction calls.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"ok"})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extraction",
		Name:      "dropped_items_total",
		Help:      "Extracted items discarded because of an unknown activity type.",
	})

	persistedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "rows_inserted_total",
		Help:      "Rows committed per activity category.",
	}, []string{"category"})

	rollbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "bucket_rollbacks_total",
		Help:      "Bucket transactions rolled back per activity category.",
	}, []string{"category"})

	lastPersistedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed bucket.",
	})

	readFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reader",
		Name:      "failures_total",
		Help:      "Reads that degraded to an empty result, per activity category.",
	}, []string{"category"})
)

func init() {
	prometheus.MustRegister(ingestCounter, extractionDuration, droppedCounter, persistedCounter, rollbackCounter, lastPersistedGauge, readFailureCounter)
}

// RecordIngest counts one ingestion request outcome.
func RecordIngest(result string) {
	ingestCounter.WithLabelValues(result).Inc()
}

// ObserveExtraction records the latency of one generator call.
func ObserveExtraction(d time.Duration, ok bool) {
	label := "false"
	if ok {
		label = "true"
	}
	extractionDuration.WithLabelValues(label).Observe(d.Seconds())
}

// RecordDropped counts items discarded by classification.
func RecordDropped(n int) {
	if n <= 0 {
		return
	}
	droppedCounter.Add(float64(n))
}

// RecordBucketCommitted counts committed rows and moves the persistence watermark.
func RecordBucketCommitted(category string, rows int, ts time.Time) {
	persistedCounter.WithLabelValues(category).Add(float64(rows))
	if ts.IsZero() {
		return
	}
	lastPersistedGauge.Set(float64(ts.Unix()))
}

// RecordBucketRollback counts one rolled back bucket transaction.
func RecordBucketRollback(category string) {
	rollbackCounter.WithLabelValues(category).Inc()
}

// RecordReadFailure counts one read that degraded to an empty result.
func RecordReadFailure(category string) {
	readFailureCounter.WithLabelValues(category).Inc()
}
