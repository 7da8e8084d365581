// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the converter.
//
// The package exposes a narrow Backend interface focused on counters and
// durations, with a global, pluggable backend that defaults to a no-op
// implementation; metric calls are always safe even when no real backend is
// configured. Concrete systems (Prometheus Pushgateway, Datadog) live in
// subpackages so the rest of the codebase depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style observation in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes or flushes metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordStep measures one conversion step: latency plus success/failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter("dd2csv_step_total", 1, lbls)
	backend.ObserveDuration("dd2csv_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts emitted records of a given kind, e.g. "parameter",
// "set", "table".
func RecordRows(job, kind string, n int) {
	if n == 0 {
		return
	}
	backend.IncCounter("dd2csv_records_total", float64(n), Labels{"job": job, "kind": kind})
}

// RecordWarnings counts non-fatal findings of a given kind, e.g.
// "dropped_mapping", "unknown_tag".
func RecordWarnings(job, kind string, n int) {
	if n == 0 {
		return
	}
	backend.IncCounter("dd2csv_warnings_total", float64(n), Labels{"job": job, "kind": kind})
}
