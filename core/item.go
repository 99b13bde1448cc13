package core

import (
	"encoding/json"
	"time"
)

// ItemStatusCompleted is the status assigned to items derived from settled
// thread history; streaming surfaces may introduce further states.
const ItemStatusCompleted = "completed"

// Item discriminator values used on the wire.
const (
	ItemTypeMessage            = "message"
	ItemTypeFunctionCall       = "function_call"
	ItemTypeFunctionCallOutput = "function_call_output"
	ItemTypeCheckpoint         = "checkpoint"
)

// Item is one unit of conversation content. It is a closed union: MessageItem,
// FunctionCallItem, FunctionCallOutputItem and CheckpointItem implement the
// unexported isItem marker. Item ids are unique within a conversation, not
// globally.
type Item interface {
	isItem()

	// ItemID returns the id unique within the owning conversation.
	ItemID() string
}

// MessageContent is a closed union of the displayable content forms a
// MessageItem may carry: text, image references and file references.
type MessageContent interface{ isMessageContent() }

// ItemText is a plain text content element.
type ItemText struct {
	Text string `json:"text"`
}

func (ItemText) isMessageContent() {}

// ItemImage references image content by URL (possibly a data: URI).
type ItemImage struct {
	ImageURL string `json:"image_url"`
	Detail   string `json:"detail,omitempty"`
}

func (ItemImage) isMessageContent() {}

// ItemFile references non-image file content by URL (possibly a data: URI).
type ItemFile struct {
	FileURL  string `json:"file_url"`
	Filename string `json:"filename,omitempty"`
}

func (ItemFile) isMessageContent() {}

// MessageItem is a conversation message holding displayable content.
type MessageItem struct {
	ID      string
	Role    string
	Content []MessageContent
	Status  string
}

func (MessageItem) isItem() {}

// ItemID implements Item.
func (m MessageItem) ItemID() string { return m.ID }

// FunctionCallItem records a tool/function invocation request.
type FunctionCallItem struct {
	ID        string
	CallID    string
	Name      string
	Arguments string
	Status    string
}

func (FunctionCallItem) isItem() {}

// ItemID implements Item.
func (f FunctionCallItem) ItemID() string { return f.ID }

// FunctionCallOutputItem records the result of a function call.
type FunctionCallOutputItem struct {
	ID     string
	CallID string
	Output string
	Status string
}

func (FunctionCallOutputItem) isItem() {}

// ItemID implements Item.
func (f FunctionCallOutputItem) ItemID() string { return f.ID }

// CheckpointItem stores a workflow checkpoint as a conversation item. Its id
// equals the checkpoint id; checkpoint items bypass the thread and live in the
// conversation's side item list.
type CheckpointItem struct {
	ID         string
	CreatedAt  time.Time
	Checkpoint *Checkpoint
}

func (CheckpointItem) isItem() {}

// ItemID implements Item.
func (c CheckpointItem) ItemID() string { return c.ID }

// messageContentEnvelope is the wire form of a MessageContent element.
type messageContentEnvelope struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func marshalMessageContent(contents []MessageContent) []messageContentEnvelope {
	envelopes := make([]messageContentEnvelope, 0, len(contents))
	for _, c := range contents {
		switch v := c.(type) {
		case ItemText:
			envelopes = append(envelopes, messageContentEnvelope{Type: "text", Text: v.Text})
		case ItemImage:
			envelopes = append(envelopes, messageContentEnvelope{Type: "input_image", ImageURL: v.ImageURL, Detail: v.Detail})
		case ItemFile:
			envelopes = append(envelopes, messageContentEnvelope{Type: "input_file", FileURL: v.FileURL, Filename: v.Filename})
		}
	}
	return envelopes
}

// MarshalJSON emits the OpenAI conversation item shape with a type discriminator.
func (m MessageItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string                   `json:"id"`
		Type    string                   `json:"type"`
		Role    string                   `json:"role"`
		Content []messageContentEnvelope `json:"content"`
		Status  string                   `json:"status"`
	}{m.ID, ItemTypeMessage, m.Role, marshalMessageContent(m.Content), m.Status})
}

// MarshalJSON emits the OpenAI function call item shape.
func (f FunctionCallItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string `json:"id"`
		Type      string `json:"type"`
		CallID    string `json:"call_id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
		Status    string `json:"status"`
	}{f.ID, ItemTypeFunctionCall, f.CallID, f.Name, f.Arguments, f.Status})
}

// MarshalJSON emits the OpenAI function call output item shape.
func (f FunctionCallOutputItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		CallID string `json:"call_id"`
		Output string `json:"output"`
		Status string `json:"status"`
	}{f.ID, ItemTypeFunctionCallOutput, f.CallID, f.Output, f.Status})
}

// MarshalJSON emits the checkpoint item shape used by the conversations surface.
func (c CheckpointItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID             string      `json:"id"`
		Type           string      `json:"type"`
		Object         string      `json:"object"`
		CreatedAt      int64       `json:"created_at"`
		CheckpointData *Checkpoint `json:"checkpoint_data"`
	}{c.ID, ItemTypeCheckpoint, "conversation.item.checkpoint", c.CreatedAt.Unix(), c.Checkpoint})
}
