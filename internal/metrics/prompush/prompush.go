// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A push model fits a batch loader better than a scrape endpoint: runs are
// short-lived, so metrics are accumulated in a private registry and pushed
// once at the end of the run. All Prometheus-specific dependencies live here
// so the rest of the project can swap backends without changes.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"landingzone/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	fileCounter  *prometheus.CounterVec // "lz_files_total"
	fileDuration *prometheus.SummaryVec // "lz_file_duration_seconds"
	rowCounter   *prometheus.CounterVec // "lz_rows_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway "job" grouping key; gatewayURL is the base URL
// of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "landingzone"
	}

	reg := prometheus.NewRegistry()

	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lz_files_total",
			Help: "Total number of processed files, partitioned by outcome status.",
		},
		[]string{"status"},
	)
	fileDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "lz_file_duration_seconds",
			Help:       "Per-file processing duration in seconds, partitioned by outcome status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lz_rows_total",
			Help: "Row-level counts per kind (original, clean, dirty, inserted, parse_errors).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(fileCounter); err != nil {
		return nil, fmt.Errorf("prompush: register file counter: %w", err)
	}
	if err := reg.Register(fileDuration); err != nil {
		return nil, fmt.Errorf("prompush: register file summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		fileCounter:  fileCounter,
		fileDuration: fileDuration,
		rowCounter:   rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "lz_files_total":
		b.fileCounter.WithLabelValues(labels["status"]).Add(delta)
	case "lz_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "lz_file_duration_seconds" {
		return
	}
	b.fileDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
