// Package core provides the foundational domain types and interfaces used by
// AgentGate. It defines the core abstractions for:
//
//   - Conversations (addressable containers of items, bound 1:1 to a Thread)
//   - Items (messages, function calls, function call outputs, checkpoints)
//   - Threads (ordered, replayable chat message histories)
//   - Checkpoints (serialized workflow state enabling pause/resume)
//   - Engine collaborators (Agent, Workflow, CheckpointStorage)
//
// The package intentionally keeps implementation concerns (storage backends,
// the execution pipeline, the HTTP surface) out of scope, exposing small
// interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
