package trace

import (
	"sync"
	"time"
)

// Event is one telemetry event produced alongside domain execution.
type Event struct {
	Type          string         `json:"type"` // always "trace_event"
	SessionID     string         `json:"session_id,omitempty"`
	EntityID      string         `json:"entity_id,omitempty"`
	OperationName string         `json:"operation_name"`
	Timestamp     time.Time      `json:"timestamp"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

// NewEvent creates a trace event for an operation stamped with the current
// UTC time.
func NewEvent(operationName string, attributes map[string]any) Event {
	return Event{
		Type:          "trace_event",
		OperationName: operationName,
		Timestamp:     time.Now().UTC(),
		Attributes:    attributes,
	}
}

// Collector accumulates trace events for one capture scope. It is safe for
// concurrent use; GetPendingEvents is non-blocking and drains in arrival
// order.
type Collector struct {
	mu        sync.Mutex
	pending   []Event
	sessionID string
	entityID  string
}

// Record appends an event, stamping the scope's session and entity ids when
// the event carries none.
func (c *Collector) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.SessionID == "" {
		ev.SessionID = c.sessionID
	}
	if ev.EntityID == "" {
		ev.EntityID = c.entityID
	}
	c.pending = append(c.pending, ev)
}

// GetPendingEvents drains and returns the events accumulated since the last
// call, preserving arrival order.
func (c *Collector) GetPendingEvents() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.pending
	c.pending = nil
	return events
}

// Recorder is the process-wide sink for trace events. Recording delivers to
// every capture scope active at that moment whose session filter matches.
type Recorder struct {
	mu     sync.RWMutex
	active map[*Collector]struct{}
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{active: make(map[*Collector]struct{})}
}

// Capture opens a capture scope bound to a session and entity. The returned
// release function detaches the scope and must be called on every exit path;
// it is idempotent.
func (r *Recorder) Capture(sessionID, entityID string) (*Collector, func()) {
	c := &Collector{sessionID: sessionID, entityID: entityID}
	r.mu.Lock()
	r.active[c] = struct{}{}
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		delete(r.active, c)
		r.mu.Unlock()
	}
	return c, release
}

// Record fans an event out to matching active scopes. A scope matches when it
// has no session filter or the event carries no session id or the two agree.
func (r *Recorder) Record(ev Event) {
	r.mu.RLock()
	collectors := make([]*Collector, 0, len(r.active))
	for c := range r.active {
		if c.sessionID == "" || ev.SessionID == "" || c.sessionID == ev.SessionID {
			collectors = append(collectors, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range collectors {
		c.Record(ev)
	}
}

// ActiveScopes returns the number of open capture scopes.
func (r *Recorder) ActiveScopes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
