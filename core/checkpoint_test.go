package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckpoint(t *testing.T) {
	cp := NewCheckpoint("wf1")
	assert.NotEmpty(t, cp.CheckpointID)
	assert.Equal(t, "wf1", cp.WorkflowID)

	created, err := cp.CreatedAt()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), created, time.Minute)
}

func TestCheckpoint_CreatedAtInvalid(t *testing.T) {
	cp := &Checkpoint{Timestamp: "not-a-time"}
	_, err := cp.CreatedAt()
	require.Error(t, err)
}
