// Package server exposes the OpenAI-compatible HTTP surface: conversation
// CRUD and item pagination, the Responses execution endpoint (streaming via
// server-sent events or aggregated), thread management and entity discovery.
// Handlers translate store sentinel errors into HTTP statuses; execution
// failures surface as in-stream error events, never as broken streams.
package server
