package gateway

import "sync/atomic"

// Metrics tracks webhook delivery counters using atomic operations for
// lock-free concurrency. Render-level metrics live on the Prometheus
// registry served at /metrics; these counters cover the gateway surface
// itself and feed the /status endpoint.
type Metrics struct {
	delivered atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// RecordDelivered records a webhook accepted and handled without error.
func (m *Metrics) RecordDelivered() {
	m.delivered.Add(1)
}

// RecordRejected records a webhook refused before reaching its handler
// (unregistered source, oversized payload, or bad signature).
func (m *Metrics) RecordRejected() {
	m.rejected.Add(1)
}

// RecordFailed records a webhook whose handler returned an error.
func (m *Metrics) RecordFailed() {
	m.failed.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Delivered: m.delivered.Load(),
		Rejected:  m.rejected.Load(),
		Failed:    m.failed.Load(),
	}
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Delivered int64 `json:"delivered"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}
