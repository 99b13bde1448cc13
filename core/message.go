package core

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ChatMessage is one entry in a thread's ordered history. A single message
// may simultaneously carry displayable content (text, images, files) and
// non-displayable content (function calls, function results, usage).
type ChatMessage struct {
	MessageID  string // Stable identifier assigned at append time
	Role       string // user, assistant, system, developer, tool, ...
	AuthorName string // Optional producing agent / author name
	Contents   []Part // Ordered heterogeneous parts
}

// NewChatMessage creates a message with a fresh stable id.
func NewChatMessage(role string, parts ...Part) ChatMessage {
	return ChatMessage{MessageID: NewID(), Role: role, Contents: parts}
}

// NewTextMessage creates a message holding a single text part.
func NewTextMessage(role, text string) ChatMessage {
	return NewChatMessage(role, TextPart{Text: text})
}

// Text concatenates all text parts of the message in order.
func (m ChatMessage) Text() string {
	var out string
	for _, p := range m.Contents {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// FunctionCalls returns the function call parts in their original order.
func (m ChatMessage) FunctionCalls() []FunctionCallPart {
	var calls []FunctionCallPart
	for _, p := range m.Contents {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

// FunctionResults returns the function result parts in their original order.
func (m ChatMessage) FunctionResults() []FunctionResultPart {
	var results []FunctionResultPart
	for _, p := range m.Contents {
		if fr, ok := p.(FunctionResultPart); ok {
			results = append(results, fr)
		}
	}
	return results
}

// Usage returns the first usage part, if any.
func (m ChatMessage) Usage() (UsagePart, bool) {
	for _, p := range m.Contents {
		if u, ok := p.(UsagePart); ok {
			return u, true
		}
	}
	return UsagePart{}, false
}

// chatMessageEnvelope is the wire form used by MarshalJSON/UnmarshalJSON so
// the Part union survives a serialize/deserialize round trip.
type chatMessageEnvelope struct {
	MessageID  string         `json:"message_id"`
	Role       string         `json:"role"`
	AuthorName string         `json:"author_name,omitempty"`
	Contents   []partEnvelope `json:"contents"`
}

// MarshalJSON implements json.Marshaler using type-tagged part envelopes.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	contents, err := marshalParts(m.Contents)
	if err != nil {
		return nil, err
	}
	return json.Marshal(chatMessageEnvelope{
		MessageID:  m.MessageID,
		Role:       m.Role,
		AuthorName: m.AuthorName,
		Contents:   contents,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var env chatMessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	parts, err := unmarshalParts(env.Contents)
	if err != nil {
		return err
	}
	m.MessageID = env.MessageID
	m.Role = env.Role
	m.AuthorName = env.AuthorName
	m.Contents = parts
	return nil
}

// NewID generates a new unique identifier.
func NewID() string { return uuid.NewString() }
