// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the landing-zone loader.
//
// It exposes a narrow Backend interface (counters and duration observations)
// behind a global, pluggable backend that defaults to a no-op implementation,
// so metric calls are always safe even when nothing is configured. Concrete
// systems (Prometheus Pushgateway) live in subpackages and are selected at
// startup, mirroring the storage backend registry pattern.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a value in a latency/duration style metric.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFile records one completed file attempt: its outcome status
// (success, partial, failed) and how long processing took.
func RecordFile(job, status string, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"status": status,
	}
	backend.IncCounter("lz_files_total", 1, lbls)
	backend.ObserveDuration("lz_file_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the processing-log fields:
//   - "original"
//   - "clean"
//   - "dirty"
//   - "inserted"
//   - "parse_errors"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("lz_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
