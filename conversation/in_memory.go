package conversation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentgate/agentgate/core"
	"github.com/google/uuid"
)

// InMemoryStore is a volatile ConversationStore implementation keeping
// conversations, their bound threads and the derived item index in process
// local maps. It is safe for concurrent access: the store level RWMutex
// guards the conversation map while each conversation carries its own mutex
// so two concurrent appends to the same conversation cannot race on the item
// list and the index. The store mutex is never held while a conversation
// mutex is acquired, and vice versa.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversationState
}

// conversationState is the authoritative record for one conversation. The
// thread's message history is the canonical item source; checkpointItems is
// the one exception, stored directly. items is the derived index for O(1)
// point lookup, updated under the same mutex as every append so list and
// index always move together, and dropped as a unit when the conversation is
// deleted.
type conversationState struct {
	mu              sync.Mutex
	id              string
	createdAt       int64
	metadata        map[string]string
	thread          *core.Thread
	checkpointItems []core.Item
	items           map[string]core.Item
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*conversationState)}
}

// Create registers a new conversation with its bound thread. Passing an
// already-used id fails with ErrConversationExists rather than silently
// overwriting the prior conversation.
func (s *InMemoryStore) Create(metadata map[string]string, conversationID string) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convID := conversationID
	if convID == "" {
		convID = fmt.Sprintf("conv_%s", uuid.NewString())
	}
	if _, exists := s.conversations[convID]; exists {
		return nil, fmt.Errorf("conversation %s: %w", convID, core.ErrConversationExists)
	}

	state := &conversationState{
		id:        convID,
		createdAt: time.Now().Unix(),
		metadata:  copyMetadata(metadata),
		thread:    core.NewThread(),
		items:     make(map[string]core.Item),
	}
	s.conversations[convID] = state

	return state.snapshotLocked(), nil
}

// Get returns the current metadata snapshot of a conversation.
func (s *InMemoryStore) Get(conversationID string) (*core.Conversation, bool) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.snapshotLocked(), true
}

// UpdateMetadata replaces the conversation's metadata in full.
func (s *InMemoryStore) UpdateMetadata(conversationID string, metadata map[string]string) (*core.Conversation, error) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, core.ErrConversationNotFound)
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.metadata = copyMetadata(metadata)
	return state.snapshotLocked(), nil
}

// Delete removes the conversation, its thread and its item index as one
// atomic unit; no item outlives its parent conversation.
func (s *InMemoryStore) Delete(conversationID string) (*core.DeletedConversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, core.ErrConversationNotFound)
	}
	delete(s.conversations, conversationID)
	return &core.DeletedConversation{ID: conversationID, Object: "conversation.deleted", Deleted: true}, nil
}

// AddItems converts raw items into thread messages, appends them to the bound
// thread and indexes the derived item views. The derivation is replayable:
// ListItems reproduces the same split from the thread's message history.
func (s *InMemoryStore) AddItems(conversationID string, items []core.ItemParam) ([]core.Item, error) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, core.ErrConversationNotFound)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	messages := make([]core.ChatMessage, 0, len(items))
	for _, item := range items {
		role := item.Role
		if role == "" {
			role = "user"
		}
		var text string
		if len(item.Content) > 0 {
			text = item.Content[0].Text
		}
		messages = append(messages, core.NewTextMessage(role, text))
	}
	state.thread.AppendMessages(messages...)

	var added []core.Item
	for _, msg := range messages {
		added = append(added, deriveItems(msg)...)
	}
	for _, item := range added {
		state.items[item.ItemID()] = item
	}

	return added, nil
}

// AddCheckpointItem appends a checkpoint item directly to the conversation's
// side item list, bypassing the thread.
func (s *InMemoryStore) AddCheckpointItem(conversationID string, checkpoint *core.Checkpoint) (core.Item, error) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, core.ErrConversationNotFound)
	}

	createdAt, err := checkpoint.CreatedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint timestamp %q: %w", checkpoint.Timestamp, err)
	}

	item := core.CheckpointItem{ID: checkpoint.CheckpointID, CreatedAt: createdAt, Checkpoint: checkpoint}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.checkpointItems = append(state.checkpointItems, item)
	state.items[item.ID] = item

	return item, nil
}

// ListItems pages over items derived from the thread history concatenated
// with directly stored checkpoint items (checkpoints last). The After cursor
// is a linear scan for the cursor id, not an offset, so pages remain stable
// under concurrent insertion at the tail.
func (s *InMemoryStore) ListItems(conversationID string, opts core.ListItemsOptions) ([]core.Item, bool, error) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, false, fmt.Errorf("conversation %s: %w", conversationID, core.ErrConversationNotFound)
	}

	state.mu.Lock()
	all := make([]core.Item, 0, state.thread.Len()+len(state.checkpointItems))
	for _, msg := range state.thread.Messages() {
		all = append(all, deriveItems(msg)...)
	}
	all = append(all, state.checkpointItems...)
	state.mu.Unlock()

	if opts.Order == core.OrderDesc {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	startIdx := 0
	if opts.After != "" {
		for i, item := range all {
			if item.ItemID() == opts.After {
				startIdx = i + 1
				break
			}
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = core.DefaultListLimit
	}

	end := startIdx + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[startIdx:end]
	hasMore := len(all) > startIdx+limit

	return page, hasMore, nil
}

// GetItem is an O(1) point lookup via the item index.
func (s *InMemoryStore) GetItem(conversationID, itemID string) (core.Item, bool) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	item, ok := state.items[itemID]
	return item, ok
}

// GetThread returns the bound execution thread, the hand-off point to the
// execution pipeline.
func (s *InMemoryStore) GetThread(conversationID string) (*core.Thread, bool) {
	state, ok := s.state(conversationID)
	if !ok {
		return nil, false
	}
	return state.thread, true
}

// ListByMetadata returns conversations whose metadata is a superset of the
// filter, ordered by creation time then id for determinism.
func (s *InMemoryStore) ListByMetadata(filter map[string]string) []*core.Conversation {
	s.mu.RLock()
	states := make([]*conversationState, 0, len(s.conversations))
	for _, state := range s.conversations {
		states = append(states, state)
	}
	s.mu.RUnlock()

	results := make([]*core.Conversation, 0)
	for _, state := range states {
		state.mu.Lock()
		matches := true
		for k, v := range filter {
			if state.metadata[k] != v {
				matches = false
				break
			}
		}
		if matches {
			results = append(results, state.snapshotLocked())
		}
		state.mu.Unlock()
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt != results[j].CreatedAt {
			return results[i].CreatedAt < results[j].CreatedAt
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// state looks up a conversation's authoritative record.
func (s *InMemoryStore) state(conversationID string) (*conversationState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.conversations[conversationID]
	return state, ok
}

// snapshotLocked renders the state as a caller-safe Conversation. The caller
// must hold state.mu or otherwise have exclusive access.
func (c *conversationState) snapshotLocked() *core.Conversation {
	return &core.Conversation{
		ID:        c.id,
		Object:    "conversation",
		CreatedAt: c.createdAt,
		Metadata:  copyMetadata(c.metadata),
	}
}

func copyMetadata(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
