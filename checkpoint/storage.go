package checkpoint

import (
	"context"

	"github.com/agentgate/agentgate/core"
)

// Storage adapts the Manager to the core.CheckpointStorage capability set,
// scoped to one entity id. This is the object injected into the execution
// engine; the engine persists and resumes state through it without knowing
// about conversations. The backing store is memory-resident, so the contexts
// are accepted for interface fidelity only.
type Storage struct {
	manager  *Manager
	entityID string
}

// Compile-time interface assertion.
var _ core.CheckpointStorage = (*Storage)(nil)

// SaveCheckpoint implements core.CheckpointStorage.
func (s *Storage) SaveCheckpoint(_ context.Context, checkpoint *core.Checkpoint) (string, error) {
	return s.manager.Save(s.entityID, checkpoint)
}

// LoadCheckpoint implements core.CheckpointStorage.
func (s *Storage) LoadCheckpoint(_ context.Context, checkpointID string) (*core.Checkpoint, error) {
	return s.manager.Load(s.entityID, checkpointID)
}

// ListCheckpointIDs implements core.CheckpointStorage.
func (s *Storage) ListCheckpointIDs(_ context.Context, workflowID string) ([]string, error) {
	checkpoints, err := s.manager.List(s.entityID, workflowID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		ids = append(ids, cp.CheckpointID)
	}
	return ids, nil
}

// ListCheckpoints implements core.CheckpointStorage.
func (s *Storage) ListCheckpoints(_ context.Context, workflowID string) ([]*core.Checkpoint, error) {
	return s.manager.List(s.entityID, workflowID)
}
