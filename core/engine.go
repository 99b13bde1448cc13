package core

import (
	"context"
	"reflect"
)

// AgentInput is the engine-native input to an agent run: either a plain text
// string (fast path) or a structured multimodal message.
type AgentInput struct {
	Text    string
	Message *ChatMessage
}

// IsText reports whether the input is the plain text fast path.
func (in AgentInput) IsText() bool { return in.Message == nil }

// TextInput wraps plain text as an AgentInput.
func TextInput(text string) AgentInput { return AgentInput{Text: text} }

// MessageInput wraps a structured message as an AgentInput.
func MessageInput(msg ChatMessage) AgentInput { return AgentInput{Message: &msg} }

// AgentUpdate is one streamed delta emitted by an agent run. Contents carry
// the same part union as thread messages (text deltas, function call
// fragments, usage).
type AgentUpdate struct {
	ResponseID string
	Contents   []Part
}

// Agent is the engine collaborator executing a single agent. Implementations
// must close the update channel when the run completes and send at most one
// terminal error on the error channel (buffered size 1). A nil thread means
// the run has no conversational context.
type Agent interface {
	Name() string
	RunStream(ctx context.Context, input AgentInput, thread *Thread) (<-chan AgentUpdate, <-chan error)
}

// WorkflowEvent is one domain event emitted by a workflow run.
type WorkflowEvent struct {
	Type       string `json:"type"`
	ExecutorID string `json:"executor_id,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// Workflow is the engine collaborator executing a workflow. StartInputTypes
// advertises the declared input types of the workflow's start point; the
// pipeline uses it to parse raw request payloads. SetCheckpointStorage is the
// injection point for transparent checkpoint persistence.
type Workflow interface {
	ID() string
	StartInputTypes() []reflect.Type
	SetCheckpointStorage(storage CheckpointStorage)
	RunStream(ctx context.Context, input any) (<-chan WorkflowEvent, <-chan error)
}
