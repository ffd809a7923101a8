package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PatternErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grassfps_pattern_errors_total",
			Help: "Number of regular expression evaluations that failed and were treated as no match",
		},
		[]string{"kind"},
	)

	PatternCompiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grassfps_pattern_compiles_total",
			Help: "Number of regular expressions compiled",
		},
	)
)
