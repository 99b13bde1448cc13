package mapper

import "github.com/agentgate/agentgate/trace"

// Wire event type discriminators.
const (
	EventTypeTextDelta         = "response.output_text.delta"
	EventTypeFunctionCallDelta = "response.function_call_arguments.delta"
	EventTypeFunctionResult    = "response.function_result.complete"
	EventTypeUsage             = "response.usage.complete"
	EventTypeTrace             = "response.trace.complete"
	EventTypeWorkflowEvent     = "response.workflow_event.complete"
	EventTypeError             = "error"
)

// Event is one OpenAI-Responses-shaped wire event. EventType returns the type
// discriminator also present in the JSON body, so transports can route
// without decoding.
type Event interface {
	EventType() string
}

// TextDeltaEvent streams one assistant text fragment.
type TextDeltaEvent struct {
	Type           string `json:"type"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index"`
	Delta          string `json:"delta"`
	SequenceNumber int    `json:"sequence_number"`
}

// EventType implements Event.
func (e TextDeltaEvent) EventType() string { return e.Type }

// FunctionCallDeltaEvent streams one chunk of a function call's argument JSON.
type FunctionCallDeltaEvent struct {
	Type           string `json:"type"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	Delta          string `json:"delta"`
	SequenceNumber int    `json:"sequence_number"`
}

// EventType implements Event.
func (e FunctionCallDeltaEvent) EventType() string { return e.Type }

// FunctionResultEvent reports a completed tool invocation.
type FunctionResultEvent struct {
	Type           string         `json:"type"`
	CallID         string         `json:"call_id"`
	ItemID         string         `json:"item_id"`
	OutputIndex    int            `json:"output_index"`
	Data           map[string]any `json:"data"`
	SequenceNumber int            `json:"sequence_number"`
}

// EventType implements Event.
func (e FunctionResultEvent) EventType() string { return e.Type }

// UsageEvent reports token accounting attached to the run.
type UsageEvent struct {
	Type           string         `json:"type"`
	ItemID         string         `json:"item_id"`
	OutputIndex    int            `json:"output_index"`
	Data           map[string]any `json:"data"`
	SequenceNumber int            `json:"sequence_number"`
}

// EventType implements Event.
func (e UsageEvent) EventType() string { return e.Type }

// TraceEvent carries one interleaved telemetry event.
type TraceEvent struct {
	Type           string      `json:"type"`
	ItemID         string      `json:"item_id"`
	Data           trace.Event `json:"data"`
	SequenceNumber int         `json:"sequence_number"`
}

// EventType implements Event.
func (e TraceEvent) EventType() string { return e.Type }

// WorkflowEvent carries one structured workflow domain event.
type WorkflowEvent struct {
	Type           string         `json:"type"`
	ItemID         string         `json:"item_id"`
	OutputIndex    int            `json:"output_index"`
	ExecutorID     string         `json:"executor_id,omitempty"`
	Data           map[string]any `json:"data"`
	SequenceNumber int            `json:"sequence_number"`
}

// EventType implements Event.
func (e WorkflowEvent) EventType() string { return e.Type }

// ErrorEvent reports a terminal failure.
type ErrorEvent struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Code           string `json:"code,omitempty"`
	SequenceNumber int    `json:"sequence_number"`
}

// EventType implements Event.
func (e ErrorEvent) EventType() string { return e.Type }
