package checkpoint

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/conversation"
	"github.com/agentgate/agentgate/core"
)

func newTestManager() (*Manager, *conversation.InMemoryStore) {
	store := conversation.NewInMemoryStore()
	return NewManager(store), store
}

func TestResolveContainer_CreatesOnce(t *testing.T) {
	mgr, store := newTestManager()

	convID, err := mgr.ResolveContainer("wf1")
	require.NoError(t, err)
	assert.Equal(t, ContainerID("wf1"), convID)

	conv, ok := store.Get(convID)
	require.True(t, ok)
	assert.Equal(t, "wf1", conv.Metadata[core.MetadataKeyEntityID])
	assert.Equal(t, core.ConversationTypeCheckpointContainer, conv.Metadata[core.MetadataKeyType])

	// Resolving again returns the same container without creating another.
	again, err := mgr.ResolveContainer("wf1")
	require.NoError(t, err)
	assert.Equal(t, convID, again)

	containers := store.ListByMetadata(map[string]string{core.MetadataKeyEntityID: "wf1"})
	assert.Len(t, containers, 1)
}

func TestResolveContainer_AdoptsExisting(t *testing.T) {
	mgr, store := newTestManager()

	_, err := store.Create(map[string]string{
		core.MetadataKeyEntityID: "wf1",
		core.MetadataKeyType:     core.ConversationTypeCheckpointContainer,
	}, "conv_preexisting")
	require.NoError(t, err)

	convID, err := mgr.ResolveContainer("wf1")
	require.NoError(t, err)
	assert.Equal(t, "conv_preexisting", convID)
}

func TestResolveContainer_Concurrent(t *testing.T) {
	mgr, store := newTestManager()

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := mgr.ResolveContainer("wf1")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	containers := store.ListByMetadata(map[string]string{core.MetadataKeyEntityID: "wf1"})
	assert.Len(t, containers, 1)
}

func TestSaveLoadList(t *testing.T) {
	mgr, _ := newTestManager()

	cp := core.NewCheckpoint("wf1")
	cp.SharedState = map[string]any{"step": float64(3)}

	id, err := mgr.Save("wf1", cp)
	require.NoError(t, err)
	assert.Equal(t, cp.CheckpointID, id)

	loaded, err := mgr.Load("wf1", id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cp.CheckpointID, loaded.CheckpointID)
	assert.Equal(t, cp.SharedState, loaded.SharedState)

	// Absent checkpoints load as nil without error.
	missing, err := mgr.Load("wf1", "cp_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := mgr.List("wf1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList_FiltersByWorkflowID(t *testing.T) {
	mgr, _ := newTestManager()

	_, err := mgr.Save("runner", core.NewCheckpoint("wfA"))
	require.NoError(t, err)
	_, err = mgr.Save("runner", core.NewCheckpoint("wfB"))
	require.NoError(t, err)

	matched, err := mgr.List("runner", "wfA")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wfA", matched[0].WorkflowID)

	all, err := mgr.List("runner", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCheckpoints_IsolatedPerEntity(t *testing.T) {
	mgr, _ := newTestManager()

	cp := core.NewCheckpoint("wf1")
	_, err := mgr.Save("wf1", cp)
	require.NoError(t, err)

	other, err := mgr.Load("wf2", cp.CheckpointID)
	require.NoError(t, err)
	assert.Nil(t, other, "checkpoints must not leak across entities")
}

func TestStorageAdapter(t *testing.T) {
	mgr, _ := newTestManager()
	storage := mgr.Storage("wf1")
	ctx := context.Background()

	cp := core.NewCheckpoint("wf1")
	id, err := storage.SaveCheckpoint(ctx, cp)
	require.NoError(t, err)
	assert.Equal(t, cp.CheckpointID, id)

	loaded, err := storage.LoadCheckpoint(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cp.CheckpointID, loaded.CheckpointID)

	ids, err := storage.ListCheckpointIDs(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, []string{cp.CheckpointID}, ids)

	checkpoints, err := storage.ListCheckpoints(ctx, "")
	require.NoError(t, err)
	assert.Len(t, checkpoints, 1)
}
