package core

// Metadata keys and values marking special conversations.
const (
	MetadataKeyEntityID = "entity_id"
	MetadataKeyType     = "type"

	// ConversationTypeCheckpointContainer marks the dedicated conversation that
	// stores all checkpoints for one entity.
	ConversationTypeCheckpointContainer = "checkpoint_container"
)

// Conversation is an addressable container of items bound 1:1 to a Thread.
type Conversation struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"` // always "conversation"
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DeletedConversation acknowledges a successful deletion.
type DeletedConversation struct {
	ID      string `json:"id"`
	Object  string `json:"object"` // always "conversation.deleted"
	Deleted bool   `json:"deleted"`
}

// ItemParam is the raw inbound form of a conversation item accepted by
// AddItems. Only the first content part's text is honored by the default
// conversion path.
type ItemParam struct {
	Role    string             `json:"role"`
	Content []ItemParamContent `json:"content"`
}

// ItemParamContent is one content part of an inbound item.
type ItemParamContent struct {
	Text string `json:"text"`
}

// SortOrder selects listing direction.
type SortOrder string

// Supported sort orders.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListItemsOptions controls pagination of ListItems. After is a linear-scan
// cursor (an item id), not an offset: the page starts at the element following
// the cursor in the possibly reversed sequence, or at index 0 when the cursor
// is absent.
type ListItemsOptions struct {
	Limit int
	After string
	Order SortOrder
}

// DefaultListLimit applies when ListItemsOptions.Limit is zero or negative.
const DefaultListLimit = 100

// ConversationStore persists conversations, their bound threads and their
// items. Mutating operations require per-conversation-id mutual exclusion;
// lookups return (value, ok) instead of errors.
type ConversationStore interface {
	// Create registers a new conversation with its bound thread and an empty
	// item index entry. A fresh "conv_<random>" id is generated when
	// conversationID is empty; passing an already-used id fails with
	// ErrConversationExists.
	Create(metadata map[string]string, conversationID string) (*Conversation, error)

	// Get returns the current metadata snapshot of a conversation.
	Get(conversationID string) (*Conversation, bool)

	// UpdateMetadata replaces (not merges) the conversation's metadata.
	UpdateMetadata(conversationID string, metadata map[string]string) (*Conversation, error)

	// Delete removes the conversation, its thread and its item index entry as
	// one atomic unit.
	Delete(conversationID string) (*DeletedConversation, error)

	// AddItems converts raw items into thread messages, appends them to the
	// bound thread and indexes the derived item views.
	AddItems(conversationID string, items []ItemParam) ([]Item, error)

	// AddCheckpointItem appends a checkpoint item directly to the
	// conversation's side item list, bypassing the thread.
	AddCheckpointItem(conversationID string, checkpoint *Checkpoint) (Item, error)

	// ListItems pages over items derived from the thread history concatenated
	// with directly stored checkpoint items (checkpoints last). Returns the
	// page and whether more items follow.
	ListItems(conversationID string, opts ListItemsOptions) ([]Item, bool, error)

	// GetItem is an O(1) point lookup via the item index.
	GetItem(conversationID, itemID string) (Item, bool)

	// GetThread returns the bound execution thread; this is the hand-off point
	// to the execution pipeline.
	GetThread(conversationID string) (*Thread, bool)

	// ListByMetadata returns conversations whose metadata is a superset of the
	// filter (exact match on every filter key).
	ListByMetadata(filter map[string]string) []*Conversation
}
