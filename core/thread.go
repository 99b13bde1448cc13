package core

import (
	"encoding/json"
	"sync"
)

// Thread is the execution engine's conversational-context object: an ordered,
// replayable ChatMessage history. It is safe for concurrent access.
//
// Contract:
//   - AppendMessages preserves arrival order
//   - Messages returns a defensive copy to avoid external mutation
//   - Snapshot/ThreadFromSnapshot round-trip the full history.
type Thread struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

// NewThread creates an empty thread.
func NewThread() *Thread {
	return &Thread{}
}

// AppendMessages adds messages to the end of the history.
func (t *Thread) AppendMessages(msgs ...ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msgs...)
}

// Messages returns a copy of the full message history.
func (t *Thread) Messages() []ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]ChatMessage, len(t.messages))
	copy(msgs, t.messages)
	return msgs
}

// Len returns the number of messages in the history.
func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// ThreadSnapshot is the serialized form of a thread plus caller metadata
// (e.g. owning agent id). It marshals to stable JSON via the tagged part
// envelopes on ChatMessage.
type ThreadSnapshot struct {
	Messages []ChatMessage     `json:"messages"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Snapshot captures the current history. The caller may attach metadata to
// the returned snapshot before persisting it.
func (t *Thread) Snapshot() ThreadSnapshot {
	return ThreadSnapshot{Messages: t.Messages()}
}

// ThreadFromSnapshot restores a thread from a previously captured snapshot.
func ThreadFromSnapshot(s ThreadSnapshot) *Thread {
	t := NewThread()
	t.AppendMessages(s.Messages...)
	return t
}

// MarshalThread serializes a thread snapshot to JSON.
func MarshalThread(s ThreadSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalThread decodes a serialized thread snapshot.
func UnmarshalThread(data []byte) (ThreadSnapshot, error) {
	var s ThreadSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return ThreadSnapshot{}, err
	}
	return s, nil
}
