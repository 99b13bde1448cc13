package executor

import (
	"context"
	"fmt"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/trace"
)

// ExecuteStreaming runs a request and returns its event stream. The channel
// is closed when the run completes, fails or the context is cancelled. A
// failed run ends with exactly one ErrorEvent; an unknown entity produces
// that single error event and nothing else.
func (e *Executor) ExecuteStreaming(ctx context.Context, req Request) <-chan StreamEvent {
	out := make(chan StreamEvent, e.bufferSize)
	go func() {
		defer close(out)
		e.run(ctx, req, out)
	}()
	return out
}

// ExecuteSync runs a request to completion and returns the collected events.
func (e *Executor) ExecuteSync(ctx context.Context, req Request) []StreamEvent {
	var events []StreamEvent
	for ev := range e.ExecuteStreaming(ctx, req) {
		events = append(events, ev)
	}
	return events
}

func (e *Executor) run(ctx context.Context, req Request, out chan<- StreamEvent) {
	state := stateIdle
	state = e.transition(req, state, stateResolving)

	info, ok := e.discovery.GetEntityInfo(req.EntityID)
	if !ok {
		e.transition(req, state, stateFailed)
		emit(ctx, out, ErrorEvent{
			Message:  fmt.Sprintf("%v: %s", core.ErrEntityNotFound, req.EntityID),
			EntityID: req.EntityID,
		})
		return
	}

	collector, release := e.recorder.Capture(req.SessionID, req.EntityID)
	defer release()

	state = e.transition(req, state, stateStreaming)

	var runErr error
	switch info.Type {
	case core.EntityTypeAgent:
		agent, ok := e.discovery.GetAgent(req.EntityID)
		if !ok {
			runErr = fmt.Errorf("%w: %s", core.ErrEntityNotFound, req.EntityID)
			break
		}
		runErr = e.runAgent(ctx, agent, req, collector, out)
	case core.EntityTypeWorkflow:
		wf, ok := e.discovery.GetWorkflow(req.EntityID)
		if !ok {
			runErr = fmt.Errorf("%w: %s", core.ErrEntityNotFound, req.EntityID)
			break
		}
		runErr = e.runWorkflow(ctx, wf, req, collector, out)
	default:
		runErr = fmt.Errorf("%w: %s", core.ErrUnsupportedEntityType, info.Type)
	}

	flushTraces(ctx, collector, out)

	if runErr != nil {
		e.transition(req, state, stateFailed)
		if ctx.Err() == nil {
			emit(ctx, out, ErrorEvent{Message: runErr.Error(), EntityID: req.EntityID})
		}
		return
	}
	e.transition(req, state, stateCompleted)
}

func (e *Executor) runAgent(ctx context.Context, agent core.Agent, req Request, collector *trace.Collector, out chan<- StreamEvent) error {
	thread := e.resolveRequestThread(req)
	input := convertAgentInput(req)

	updates, errs := agent.RunStream(ctx, input, thread)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, open := <-updates:
			if !open {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("agent execution error: %w", err)
					}
				}
				return nil
			}
			if !flushTraces(ctx, collector, out) {
				return ctx.Err()
			}
			if !emit(ctx, out, AgentUpdateEvent{Update: update}) {
				return ctx.Err()
			}
		}
	}
}

func (e *Executor) runWorkflow(ctx context.Context, wf core.Workflow, req Request, collector *trace.Collector, out chan<- StreamEvent) error {
	if e.checkpoints != nil {
		wf.SetCheckpointStorage(e.checkpoints.Storage(req.EntityID))
	}
	input := parseWorkflowInput(wf, selectWorkflowInput(req))

	events, errs := wf.RunStream(ctx, input)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, open := <-events:
			if !open {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("workflow execution error: %w", err)
					}
				}
				return nil
			}
			if !flushTraces(ctx, collector, out) {
				return ctx.Err()
			}
			if !emit(ctx, out, WorkflowStreamEvent{Event: ev}) {
				return ctx.Err()
			}
		}
	}
}

// resolveRequestThread finds the conversational context for a request: a
// registry thread by id, or the thread backing a conversation. A dangling
// reference is logged and the run proceeds without context.
func (e *Executor) resolveRequestThread(req Request) *core.Thread {
	if req.ThreadID != "" {
		if thread, ok := e.GetThread(req.ThreadID); ok {
			return thread
		}
		e.logger.Warn("request references unknown thread", "thread_id", req.ThreadID, "entity_id", req.EntityID)
	}
	if req.ConversationID != "" && e.store != nil {
		if thread, ok := e.store.GetThread(req.ConversationID); ok {
			return thread
		}
		e.logger.Warn("request references unknown conversation", "conversation_id", req.ConversationID, "entity_id", req.EntityID)
	}
	return nil
}

func (e *Executor) transition(req Request, from, to runState) runState {
	e.logger.Debug("execution state change",
		"entity_id", req.EntityID,
		"from", from.String(),
		"to", to.String(),
	)
	return to
}

// flushTraces drains the collector and emits its events in arrival order.
// Returns false when the context is cancelled mid-flush.
func flushTraces(ctx context.Context, collector *trace.Collector, out chan<- StreamEvent) bool {
	for _, ev := range collector.GetPendingEvents() {
		if !emit(ctx, out, TraceStreamEvent{Event: ev}) {
			return false
		}
	}
	return true
}

// emit sends one event unless the context is cancelled first.
func emit(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}
