package testutil

import (
	"github.com/agentgate/agentgate/core"
)

// MessageBuilder provides a fluent helper for constructing chat messages in
// tests. Example:
//
//	msg := NewMessageBuilder("assistant").Text("hi").Usage(10, 4, 6).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id     string
	role   string
	author string
	parts  []core.Part
}

// NewMessageBuilder creates a builder for a message with the given role.
func NewMessageBuilder(role string) *MessageBuilder {
	return &MessageBuilder{role: role}
}

// ID overrides the auto-generated message id (chainable). Use mainly in tests
// where determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Author sets the author name for the message (chainable).
func (b *MessageBuilder) Author(name string) *MessageBuilder { b.author = name; return b }

// Text appends a text part (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder {
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// Data appends a data part referencing hosted or inline content (chainable).
func (b *MessageBuilder) Data(uri, mediaType, filename string) *MessageBuilder {
	b.parts = append(b.parts, core.DataPart{URI: uri, MediaType: mediaType, Filename: filename})
	return b
}

// FunctionCall appends a function call part with a serialized JSON argument
// string (chainable).
func (b *MessageBuilder) FunctionCall(callID, name, args string) *MessageBuilder {
	b.parts = append(b.parts, core.FunctionCallPart{CallID: callID, Name: name, Arguments: args})
	return b
}

// FunctionResult appends a function result part (chainable).
func (b *MessageBuilder) FunctionResult(callID, output string) *MessageBuilder {
	b.parts = append(b.parts, core.FunctionResultPart{CallID: callID, Output: output})
	return b
}

// Usage appends a usage part (chainable).
func (b *MessageBuilder) Usage(total, prompt, completion int) *MessageBuilder {
	b.parts = append(b.parts, core.UsagePart{
		TotalTokens:      total,
		PromptTokens:     prompt,
		CompletionTokens: completion,
	})
	return b
}

// AddPart appends a custom content part (chainable).
func (b *MessageBuilder) AddPart(p core.Part) *MessageBuilder {
	b.parts = append(b.parts, p)
	return b
}

// Build constructs the core.ChatMessage value.
func (b *MessageBuilder) Build() core.ChatMessage {
	msg := core.NewChatMessage(b.role, b.parts...)
	if b.id != "" {
		msg.MessageID = b.id
	}
	msg.AuthorName = b.author
	return msg
}

// ThreadOf builds a thread pre-populated with the given messages.
func ThreadOf(msgs ...core.ChatMessage) *core.Thread {
	t := core.NewThread()
	t.AppendMessages(msgs...)
	return t
}
