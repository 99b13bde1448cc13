package testutil

import (
	"context"
	"reflect"
	"sync"

	"github.com/agentgate/agentgate/core"
)

// ScriptedAgent is a core.Agent that replays a fixed sequence of updates.
// Each update is appended to the thread (when present) as an assistant
// message before being emitted, mimicking an engine that maintains history.
type ScriptedAgent struct {
	AgentName string
	Updates   []core.AgentUpdate
	Err       error // emitted after all updates when non-nil

	// OnRun, when set, observes the input and thread of each run.
	OnRun func(input core.AgentInput, thread *core.Thread)
}

var _ core.Agent = (*ScriptedAgent)(nil)

// Name implements core.Agent.
func (a *ScriptedAgent) Name() string { return a.AgentName }

// RunStream implements core.Agent by replaying the scripted updates.
func (a *ScriptedAgent) RunStream(ctx context.Context, input core.AgentInput, thread *core.Thread) (<-chan core.AgentUpdate, <-chan error) {
	updates := make(chan core.AgentUpdate)
	errs := make(chan error, 1)
	if a.OnRun != nil {
		a.OnRun(input, thread)
	}
	go func() {
		defer close(updates)
		defer close(errs)
		for _, update := range a.Updates {
			if thread != nil {
				thread.AppendMessages(core.NewChatMessage("assistant", update.Contents...))
			}
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case updates <- update:
			}
		}
		if a.Err != nil {
			errs <- a.Err
		}
	}()
	return updates, errs
}

// ScriptedWorkflow is a core.Workflow that replays a fixed event sequence and
// records the input it was started with and the storage it was handed.
type ScriptedWorkflow struct {
	WorkflowID string
	InputTypes []reflect.Type
	Events     []core.WorkflowEvent
	Err        error // emitted after all events when non-nil

	// SaveCheckpoints, when set, saves one checkpoint through the injected
	// storage before emitting events.
	SaveCheckpoints []*core.Checkpoint

	mu        sync.Mutex
	storage   core.CheckpointStorage
	lastInput any
}

var _ core.Workflow = (*ScriptedWorkflow)(nil)

// ID implements core.Workflow.
func (w *ScriptedWorkflow) ID() string { return w.WorkflowID }

// StartInputTypes implements core.Workflow.
func (w *ScriptedWorkflow) StartInputTypes() []reflect.Type { return w.InputTypes }

// SetCheckpointStorage implements core.Workflow.
func (w *ScriptedWorkflow) SetCheckpointStorage(storage core.CheckpointStorage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.storage = storage
}

// Storage returns the storage injected before the last run.
func (w *ScriptedWorkflow) Storage() core.CheckpointStorage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.storage
}

// LastInput returns the parsed input of the last run.
func (w *ScriptedWorkflow) LastInput() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastInput
}

// RunStream implements core.Workflow by replaying the scripted events.
func (w *ScriptedWorkflow) RunStream(ctx context.Context, input any) (<-chan core.WorkflowEvent, <-chan error) {
	w.mu.Lock()
	w.lastInput = input
	storage := w.storage
	w.mu.Unlock()

	events := make(chan core.WorkflowEvent)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		if storage != nil {
			for _, cp := range w.SaveCheckpoints {
				if _, err := storage.SaveCheckpoint(ctx, cp); err != nil {
					errs <- err
					return
				}
			}
		}
		for _, ev := range w.Events {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case events <- ev:
			}
		}
		if w.Err != nil {
			errs <- w.Err
		}
	}()
	return events, errs
}
