package checkpoint

import (
	"fmt"
	"sync"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/logging"
)

// listAllLimit approximates "all items" when scanning a container
// conversation for checkpoints.
const listAllLimit = 1000

// Options holds dependency overrides passed to NewManager.
type Options struct {
	// Logger receives container lifecycle messages.
	Logger logging.Logger
}

// Manager maps entity ids to their checkpoint container conversations and
// stores checkpoints as items inside them. The entity-to-conversation cache
// is an optimization only; the store's metadata-filtered scan remains the
// source of truth and the cache is rebuilt from it on miss.
type Manager struct {
	store  core.ConversationStore
	logger logging.Logger

	mu          sync.Mutex
	cache       map[string]string // entity id -> container conversation id
	entityLocks map[string]*sync.Mutex
}

// NewManager constructs a Manager over the given store.
func NewManager(store core.ConversationStore, optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		store:       store,
		logger:      opts.Logger,
		cache:       make(map[string]string),
		entityLocks: make(map[string]*sync.Mutex),
	}
}

// ContainerID returns the deterministic container conversation id for an entity.
func ContainerID(entityID string) string {
	return fmt.Sprintf("checkpoints_%s", entityID)
}

// ResolveContainer returns the entity's checkpoint container conversation id,
// creating the container if none exists. The check-then-create sequence is
// serialized per entity id so concurrent resolutions for an unseen entity
// cannot create two containers.
func (m *Manager) ResolveContainer(entityID string) (string, error) {
	lock := m.entityLock(entityID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	convID, ok := m.cache[entityID]
	m.mu.Unlock()
	if ok {
		return convID, nil
	}

	existing := m.store.ListByMetadata(map[string]string{
		core.MetadataKeyEntityID: entityID,
		core.MetadataKeyType:     core.ConversationTypeCheckpointContainer,
	})
	if len(existing) > 0 {
		convID = existing[0].ID
		m.cacheContainer(entityID, convID)
		return convID, nil
	}

	conv, err := m.store.Create(map[string]string{
		core.MetadataKeyEntityID: entityID,
		core.MetadataKeyType:     core.ConversationTypeCheckpointContainer,
		"name":                   fmt.Sprintf("Checkpoints for %s", entityID),
	}, ContainerID(entityID))
	if err != nil {
		return "", fmt.Errorf("create checkpoint container for %s: %w", entityID, err)
	}

	m.cacheContainer(entityID, conv.ID)
	m.logger.Info("created checkpoint container", "entity_id", entityID, "conversation_id", conv.ID)
	return conv.ID, nil
}

// Save stores a checkpoint as an item in the entity's container and returns
// the checkpoint id.
func (m *Manager) Save(entityID string, checkpoint *core.Checkpoint) (string, error) {
	convID, err := m.ResolveContainer(entityID)
	if err != nil {
		return "", err
	}
	if _, err := m.store.AddCheckpointItem(convID, checkpoint); err != nil {
		return "", fmt.Errorf("save checkpoint %s: %w", checkpoint.CheckpointID, err)
	}
	return checkpoint.CheckpointID, nil
}

// Load fetches a checkpoint by id. Returns nil when the item is absent or is
// not a checkpoint-typed item.
func (m *Manager) Load(entityID, checkpointID string) (*core.Checkpoint, error) {
	convID, err := m.ResolveContainer(entityID)
	if err != nil {
		return nil, err
	}
	item, ok := m.store.GetItem(convID, checkpointID)
	if !ok {
		return nil, nil
	}
	cpItem, ok := item.(core.CheckpointItem)
	if !ok {
		return nil, nil
	}
	return cpItem.Checkpoint, nil
}

// List returns the entity's checkpoints, optionally filtered by workflow id.
func (m *Manager) List(entityID, workflowID string) ([]*core.Checkpoint, error) {
	convID, err := m.ResolveContainer(entityID)
	if err != nil {
		return nil, err
	}
	items, _, err := m.store.ListItems(convID, core.ListItemsOptions{Limit: listAllLimit})
	if err != nil {
		return nil, fmt.Errorf("list checkpoints for %s: %w", entityID, err)
	}

	checkpoints := make([]*core.Checkpoint, 0, len(items))
	for _, item := range items {
		cpItem, ok := item.(core.CheckpointItem)
		if !ok {
			continue
		}
		if workflowID != "" && cpItem.Checkpoint.WorkflowID != workflowID {
			continue
		}
		checkpoints = append(checkpoints, cpItem.Checkpoint)
	}
	return checkpoints, nil
}

// Storage returns the engine-facing CheckpointStorage adapter scoped to one
// entity id.
func (m *Manager) Storage(entityID string) core.CheckpointStorage {
	return &Storage{manager: m, entityID: entityID}
}

func (m *Manager) cacheContainer(entityID, convID string) {
	m.mu.Lock()
	m.cache[entityID] = convID
	m.mu.Unlock()
}

// entityLock returns the mutex serializing container resolution for one
// entity id, creating it on first use.
func (m *Manager) entityLock(entityID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.entityLocks[entityID]
	if !ok {
		lock = &sync.Mutex{}
		m.entityLocks[entityID] = lock
	}
	return lock
}
