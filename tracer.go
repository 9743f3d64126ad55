package sibyl

import "sync"

// spanContext is one entry in the tracer's stack of open spans. The
// child list is observational bookkeeping only; the persisted hierarchy
// lives in ParentID references on the events themselves.
type spanContext struct {
	event    Event
	children []Event
}

// Tracer issues trace events, resolves implicit parentage through a
// stack of open spans, and hands every event to its Backend. One Tracer
// (and its one Backend) is shared across all concurrently traced work
// belonging to a single run; all stack access serializes on one mutex.
type Tracer struct {
	mu      sync.Mutex
	backend Backend
	stack   []*spanContext
}

// New creates a Tracer. A nil backend defaults to a FileBackend with an
// auto-generated path.
func New(backend Backend) *Tracer {
	if backend == nil {
		backend = NewFileBackend("")
	}
	return &Tracer{backend: backend}
}

// Backend returns the tracer's backend.
func (t *Tracer) Backend() Backend { return t.backend }

// LogOption adjusts a single Log or Span call.
type LogOption func(*logConfig)

type logConfig struct {
	parentID *uint64
}

// WithParent overrides the implicit parent with an explicit event id.
func WithParent(id uint64) LogOption {
	return func(c *logConfig) { c.parentID = &id }
}

// Log persists a single event and returns its id. Without WithParent
// the event is parented to the innermost open span, if any. A backend
// failure (for example a threshold-triggered flush) surfaces here.
func (t *Tracer) Log(typ TraceType, action ActionType, details map[string]any, opts ...LogOption) (uint64, error) {
	var cfg logConfig
	for _, o := range opts {
		o(&cfg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent := cfg.parentID
	if parent == nil {
		if top := t.topLocked(); top != nil {
			id := top.event.ID
			parent = &id
		}
	}

	event, err := NewEvent(typ, action, parent, details)
	if err != nil {
		return 0, err
	}
	if top := t.topLocked(); top != nil {
		top.children = append(top.children, event)
	}
	if err := t.backend.Save(event); err != nil {
		return 0, err
	}
	return event.ID, nil
}

// CurrentParent returns the id of the innermost open span, or false
// when no span is open.
func (t *Tracer) CurrentParent() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if top := t.topLocked(); top != nil {
		return top.event.ID, true
	}
	return 0, false
}

// Depth returns the number of currently open spans.
func (t *Tracer) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}

// Flush forces any events buffered by the backend out to the durable
// sink.
func (t *Tracer) Flush() error {
	return t.backend.Flush()
}

func (t *Tracer) topLocked() *spanContext {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *Tracer) pushLocked(ctx *spanContext) {
	t.stack = append(t.stack, ctx)
}

// removeLocked takes ctx out of the stack wherever it sits. Spans
// opened by concurrent goroutines interleave on the shared stack, so a
// span must remove its own entry rather than blindly popping the top —
// otherwise one goroutine's close could evict another's open span.
func (t *Tracer) removeLocked(ctx *spanContext) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == ctx {
			t.stack = append(t.stack[:i], t.stack[i+1:]...)
			return
		}
	}
}
