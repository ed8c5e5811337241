package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Trash operation metrics. Each recycle process starts from zero, so counters
// describe a single run and recycle_last_run_timestamp dates it.
var (
	// OperationsTotal counts recycle invocations by outcome (TRASH, DRY_RUN, SKIP, BLOCKED, ERROR)
	OperationsTotal *prometheus.CounterVec

	// ItemsTrashedTotal counts items actually moved to the trash
	ItemsTrashedTotal prometheus.Counter

	// BytesTrashedTotal tracks bytes moved to the trash
	BytesTrashedTotal prometheus.Counter

	// ErrorsTotal counts failed trash operations
	ErrorsTotal prometheus.Counter

	// OperationDuration tracks how long the trash facility call takes
	OperationDuration prometheus.Histogram

	// ItemSizeBytes tracks the size distribution of trashed items
	ItemSizeBytes prometheus.Histogram

	// SourceVolumeFreeBytes reports free space on the volume of the last trashed item
	SourceVolumeFreeBytes prometheus.Gauge

	// LastRunTimestamp records Unix timestamp of the last invocation
	LastRunTimestamp prometheus.Gauge
)

// initRecycleMetrics initializes all trash operation metrics
func initRecycleMetrics() {
	OperationsTotal = NewCounterVec(
		"recycle_operations_total",
		"Recycle invocations by outcome in this run.",
		[]string{"action"},
	)

	ItemsTrashedTotal = NewCounter(
		"recycle_items_trashed_total",
		"Items moved to the trash in this run.",
	)

	BytesTrashedTotal = NewCounter(
		"recycle_bytes_trashed_total",
		"Bytes moved to the trash in this run.",
	)

	ErrorsTotal = NewCounter(
		"recycle_errors_total",
		"Failed trash operations in this run.",
	)

	OperationDuration = NewDurationHistogram(
		"recycle_operation_duration_seconds",
		"Duration of trash facility calls in seconds.",
	)

	ItemSizeBytes = NewBytesHistogram(
		"recycle_item_size_bytes",
		"Size of trashed items in bytes.",
	)

	SourceVolumeFreeBytes = NewGauge(
		"recycle_source_volume_free_bytes",
		"Free bytes on the volume that held the last trashed item.",
	)

	LastRunTimestamp = NewGauge(
		"recycle_last_run_timestamp",
		"Timestamp of the last recycle run (Unix epoch seconds).",
	)
}

// registerRecycleMetrics registers all trash operation metrics with Registry
func registerRecycleMetrics() {
	Registry.MustRegister(OperationsTotal)
	Registry.MustRegister(ItemsTrashedTotal)
	Registry.MustRegister(BytesTrashedTotal)
	Registry.MustRegister(ErrorsTotal)
	Registry.MustRegister(OperationDuration)
	Registry.MustRegister(ItemSizeBytes)
	Registry.MustRegister(SourceVolumeFreeBytes)
	Registry.MustRegister(LastRunTimestamp)
}

// RecordOperation updates the counters for one recycle outcome.
// size and duration only count for actual trash moves.
func RecordOperation(action string, size int64, duration time.Duration) {
	OperationsTotal.WithLabelValues(action).Inc()
	LastRunTimestamp.Set(float64(time.Now().Unix()))

	switch action {
	case "TRASH":
		ItemsTrashedTotal.Inc()
		BytesTrashedTotal.Add(float64(size))
		ItemSizeBytes.Observe(float64(size))
		OperationDuration.Observe(duration.Seconds())
	case "ERROR":
		ErrorsTotal.Inc()
		OperationDuration.Observe(duration.Seconds())
	}
}

// UpdateSourceVolumeFree records free space left on the source volume
func UpdateSourceVolumeFree(freeBytes int64) {
	SourceVolumeFreeBytes.Set(float64(freeBytes))
}
