// Package executor drives agent and workflow execution requests against the
// engine and turns each run into one ordered stream of events. It owns:
//
//   - the per-request state machine (idle, resolving, streaming, completed or
//     failed) including entity classification and thread resolution
//   - conversion of inbound request payloads into the engine's native input
//     shapes (plain text fast path, structured multimodal messages, typed
//     workflow start inputs)
//   - interleaving of trace events with engine events: pending trace events
//     are flushed before every domain event and once more when the engine
//     stream ends, preserving arrival order within each source
//   - the thread registry for agent-scoped, non-conversational execution
//     (create, list, ownership lookup, delete, serialize/restore, display
//     message extraction)
//
// Engine failures never escape the stream: they surface as a terminal error
// event and close it.
package executor
