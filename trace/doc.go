// Package trace provides scoped collection of telemetry events emitted
// alongside domain execution events. A Recorder fans recorded events out to
// the capture scopes active at that moment; each scope's Collector drains
// what has accumulated via GetPendingEvents, letting the execution pipeline
// interleave trace events with engine events without reordering either
// source.
package trace
