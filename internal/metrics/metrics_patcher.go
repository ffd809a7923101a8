package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grassfps_records_processed_total",
			Help: "Total number of records passed to the patcher",
		},
	)

	RecordsChanged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grassfps_records_changed_total",
			Help: "Number of records modified by at least one category",
		},
	)

	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grassfps_records_skipped_total",
			Help: "Number of records rejected by the global filters",
		},
	)

	CategoryApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grassfps_category_applied_total",
			Help: "Number of times a category matched a record",
		},
		[]string{"category"},
	)

	ApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grassfps_apply_duration_seconds",
			Help:    "Time spent applying all categories to a single record",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 5},
		},
	)
)
