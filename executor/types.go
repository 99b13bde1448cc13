package executor

import (
	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/trace"
)

// Discovery locates executable entities. The discovery.Registry satisfies it;
// alternative mechanisms (directory scanning, remote catalogs) can be plugged
// in without touching the pipeline.
type Discovery interface {
	GetEntityInfo(entityID string) (*core.EntityInfo, bool)
	GetAgent(entityID string) (core.Agent, bool)
	GetWorkflow(entityID string) (core.Workflow, bool)
	ListEntities() []*core.EntityInfo
}

// Request is one execution request against an entity.
type Request struct {
	// EntityID names the agent or workflow to execute.
	EntityID string

	// Input is the raw request payload: a plain string, a list of message
	// items in OpenAI input shape, or an arbitrary mapping.
	Input any

	// InputData is structured workflow input taking priority over Input.
	InputData map[string]any

	// ThreadID optionally binds the run to a registry thread.
	ThreadID string

	// ConversationID optionally binds the run to a conversation's thread.
	ConversationID string

	// SessionID scopes trace collection.
	SessionID string
}

// StreamEvent is one element of the ordered stream produced for an execution
// request. It is a closed union: AgentUpdateEvent, WorkflowStreamEvent,
// TraceStreamEvent and ErrorEvent implement the unexported marker.
type StreamEvent interface{ isStreamEvent() }

// AgentUpdateEvent wraps one delta emitted by an agent run.
type AgentUpdateEvent struct {
	Update core.AgentUpdate
}

func (AgentUpdateEvent) isStreamEvent() {}

// WorkflowStreamEvent wraps one domain event emitted by a workflow run.
type WorkflowStreamEvent struct {
	Event core.WorkflowEvent
}

func (WorkflowStreamEvent) isStreamEvent() {}

// TraceStreamEvent wraps one telemetry event interleaved into the stream.
type TraceStreamEvent struct {
	Event trace.Event
}

func (TraceStreamEvent) isStreamEvent() {}

// ErrorEvent is terminal: it is the last event of a failed stream and never
// propagates as a Go error to the stream consumer.
type ErrorEvent struct {
	Message  string `json:"message"`
	EntityID string `json:"entity_id,omitempty"`
}

func (ErrorEvent) isStreamEvent() {}

// runState tracks an execution request through its lifecycle.
type runState int

const (
	stateIdle runState = iota
	stateResolving
	stateStreaming
	stateCompleted
	stateFailed
)

// String returns the state name for logging.
func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateResolving:
		return "resolving"
	case stateStreaming:
		return "streaming"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
