// Package metrics records per-operation counters and latencies for the
// NLx402 client.
package metrics

import "time"

// Label keys used by the client.
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)

// Metric names used by the client.
const (
	MetricRequests        = "requests"
	MetricRequestDuration = "request_duration"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
