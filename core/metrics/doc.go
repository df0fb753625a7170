// Package metrics defines the sink interface used to record batch outcomes.
// Implementations live in infra/metrics; NopSink is used when metrics are
// disabled.
package metrics
