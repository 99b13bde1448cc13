package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/executor"
	"github.com/agentgate/agentgate/trace"
)

// argChunkSize bounds function call argument deltas so large payloads stream
// in pieces like model output does.
const argChunkSize = 50

// Converter maps the pipeline events of one execution request to wire events.
// It is not safe for concurrent use; create one per request.
type Converter struct {
	itemID       string
	seq          int
	outputIndex  int
	contentIndex int
	usage        *core.UsagePart
}

// NewConverter creates the conversion context for one request.
func NewConverter() *Converter {
	return &Converter{itemID: fmt.Sprintf("msg_%s", shortID(8))}
}

// ItemID returns the synthetic output item id shared by this request's events.
func (c *Converter) ItemID() string { return c.itemID }

// Convert turns one pipeline event into zero or more wire events.
func (c *Converter) Convert(ev executor.StreamEvent) []Event {
	switch v := ev.(type) {
	case executor.AgentUpdateEvent:
		return c.convertUpdate(v.Update)
	case executor.WorkflowStreamEvent:
		return []Event{c.convertWorkflowEvent(v.Event)}
	case executor.TraceStreamEvent:
		return []Event{TraceEvent{
			Type:           EventTypeTrace,
			ItemID:         c.itemID,
			Data:           v.Event,
			SequenceNumber: c.nextSeq(),
		}}
	case executor.ErrorEvent:
		return []Event{ErrorEvent{
			Type:           EventTypeError,
			Message:        v.Message,
			SequenceNumber: c.nextSeq(),
		}}
	default:
		return []Event{c.textDelta(fmt.Sprintf("Unknown event: %v\n", ev))}
	}
}

func (c *Converter) convertUpdate(update core.AgentUpdate) []Event {
	var events []Event
	for _, part := range update.Contents {
		switch p := part.(type) {
		case core.TextPart:
			events = append(events, c.textDelta(p.Text))
		case core.FunctionCallPart:
			args := p.Arguments
			if args == "" {
				args = "{}"
			}
			for _, chunk := range chunkString(args, argChunkSize) {
				events = append(events, FunctionCallDeltaEvent{
					Type:           EventTypeFunctionCallDelta,
					ItemID:         c.itemID,
					OutputIndex:    c.outputIndex,
					Delta:          chunk,
					SequenceNumber: c.nextSeq(),
				})
			}
		case core.FunctionResultPart:
			events = append(events, FunctionResultEvent{
				Type:        EventTypeFunctionResult,
				CallID:      p.CallID,
				ItemID:      c.itemID,
				OutputIndex: c.outputIndex,
				Data: map[string]any{
					"call_id":   p.CallID,
					"result":    p.Output,
					"status":    "completed",
					"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
				},
				SequenceNumber: c.nextSeq(),
			})
		case core.UsagePart:
			c.usage = &p
			events = append(events, UsageEvent{
				Type:        EventTypeUsage,
				ItemID:      c.itemID,
				OutputIndex: c.outputIndex,
				Data: map[string]any{
					"total_tokens":      p.TotalTokens,
					"prompt_tokens":     p.PromptTokens,
					"completion_tokens": p.CompletionTokens,
					"timestamp":         time.Now().UTC().Format(time.RFC3339Nano),
				},
				SequenceNumber: c.nextSeq(),
			})
		case core.DataPart:
			events = append(events, TraceEvent{
				Type:   EventTypeTrace,
				ItemID: c.itemID,
				Data: trace.NewEvent("content.data", map[string]any{
					"uri":        p.URI,
					"media_type": p.MediaType,
					"filename":   p.Filename,
				}),
				SequenceNumber: c.nextSeq(),
			})
		default:
			events = append(events, c.textDelta(fmt.Sprintf("Unknown content type: %T\n", part)))
		}
		c.contentIndex++
	}
	return events
}

func (c *Converter) convertWorkflowEvent(ev core.WorkflowEvent) WorkflowEvent {
	return WorkflowEvent{
		Type:        EventTypeWorkflowEvent,
		ItemID:      c.itemID,
		OutputIndex: c.outputIndex,
		ExecutorID:  ev.ExecutorID,
		Data: map[string]any{
			"event_type":  ev.Type,
			"data":        ev.Data,
			"executor_id": ev.ExecutorID,
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		},
		SequenceNumber: c.nextSeq(),
	}
}

func (c *Converter) textDelta(text string) TextDeltaEvent {
	return TextDeltaEvent{
		Type:           EventTypeTextDelta,
		ItemID:         c.itemID,
		OutputIndex:    c.outputIndex,
		ContentIndex:   c.contentIndex,
		Delta:          text,
		SequenceNumber: c.nextSeq(),
	}
}

func (c *Converter) nextSeq() int {
	c.seq++
	return c.seq
}

func chunkString(s string, size int) []string {
	chunks := make([]string, 0, (len(s)+size-1)/size)
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
