package engine

import "sync/atomic"

// Metrics tracks facade-level operation counters using atomic
// counters, mirroring pkg/memory/metrics.go's Metrics/Snapshot shape.
type Metrics struct {
	added       atomic.Int64
	updated     atomic.Int64
	removed     atomic.Int64
	predicted   atomic.Int64
	evaluations atomic.Int64
	errors      atomic.Int64
}

// IncAdded increments the added counter.
func (m *Metrics) IncAdded() { m.added.Add(1) }

// IncUpdated increments the updated counter.
func (m *Metrics) IncUpdated() { m.updated.Add(1) }

// IncRemoved increments the removed counter.
func (m *Metrics) IncRemoved() { m.removed.Add(1) }

// IncPredicted increments the predicted counter.
func (m *Metrics) IncPredicted() { m.predicted.Add(1) }

// IncEvaluations increments the evaluations counter.
func (m *Metrics) IncEvaluations() { m.evaluations.Add(1) }

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() { m.errors.Add(1) }

// MetricsSnapshot is a point-in-time, JSON-friendly copy of Metrics.
type MetricsSnapshot struct {
	Added       int64 `json:"added"`
	Updated     int64 `json:"updated"`
	Removed     int64 `json:"removed"`
	Predicted   int64 `json:"predicted"`
	Evaluations int64 `json:"evaluations"`
	Errors      int64 `json:"errors"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Added:       m.added.Load(),
		Updated:     m.updated.Load(),
		Removed:     m.removed.Load(),
		Predicted:   m.predicted.Load(),
		Evaluations: m.evaluations.Load(),
		Errors:      m.errors.Load(),
	}
}
