// Package checkpoint persists workflow checkpoints as conversation items.
// Each entity owns a dedicated "checkpoint container" conversation, created
// on demand with a deterministic id and marking metadata, so checkpoints are
// listable and resumable through the same item-listing API used for ordinary
// messages — no separate storage subsystem.
//
// The Manager exposes the full entity-scoped surface; Storage is the narrow
// core.CheckpointStorage adapter injected into the execution engine so
// workflows can pause and resume without knowing about conversations at all.
package checkpoint
