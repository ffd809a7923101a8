package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WriteFile writes every registered metric to path in the text exposition
// format, for collection by a node exporter textfile collector.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
