package core

import (
	"context"
	"time"
)

// Checkpoint is a serialized snapshot of in-flight workflow state, enabling
// pause/resume (human-in-the-loop). The body beyond the identifying triplet
// is opaque to this layer.
type Checkpoint struct {
	CheckpointID   string         `json:"checkpoint_id"`
	WorkflowID     string         `json:"workflow_id"`
	Timestamp      string         `json:"timestamp"` // RFC 3339
	Messages       map[string]any `json:"messages,omitempty"`
	SharedState    map[string]any `json:"shared_state,omitempty"`
	ExecutorStates map[string]any `json:"executor_states,omitempty"`
	IterationCount int            `json:"iteration_count,omitempty"`
}

// NewCheckpoint creates a checkpoint for a workflow with a fresh id and the
// current UTC time.
func NewCheckpoint(workflowID string) *Checkpoint {
	return &Checkpoint{
		CheckpointID: NewID(),
		WorkflowID:   workflowID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// CreatedAt parses the checkpoint timestamp. The timestamp must parse to a
// valid instant; checkpoint items derive their created_at from it.
func (c *Checkpoint) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.Timestamp)
}

// CheckpointStorage is the narrow capability set injected into the execution
// engine so workflows can persist and resume state without knowing about
// conversations. LoadCheckpoint returns nil (no error) when the checkpoint is
// absent; an empty workflowID disables workflow filtering on the list calls.
type CheckpointStorage interface {
	SaveCheckpoint(ctx context.Context, checkpoint *Checkpoint) (string, error)
	LoadCheckpoint(ctx context.Context, checkpointID string) (*Checkpoint, error)
	ListCheckpointIDs(ctx context.Context, workflowID string) ([]string, error)
	ListCheckpoints(ctx context.Context, workflowID string) ([]*Checkpoint, error)
}
