package sibyl

// Span is the handle for an open traced interval. It exposes the
// opening event's id so nested logs can reference it, and End restores
// the tracer's context on every exit path.
type Span struct {
	tracer *Tracer
	ctx    *spanContext
	ended  bool // guarded by tracer.mu
}

// Span logs the opening event, pushes it onto the context stack, and
// returns the handle. Close the span with End, normally via defer:
//
//	sp, err := tracer.Span(sibyl.TraceAgent, sibyl.ActionStart, nil)
//	if err != nil { ... }
//	defer sp.End()
func (t *Tracer) Span(typ TraceType, action ActionType, details map[string]any, opts ...LogOption) (*Span, error) {
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
		return nil, err
	}
	ctx := &spanContext{event: event}
	t.pushLocked(ctx)
	if err := t.backend.Save(event); err != nil {
		t.removeLocked(ctx)
		return nil, err
	}
	return &Span{tracer: t, ctx: ctx}, nil
}

// ID returns the opening event's id.
func (s *Span) ID() uint64 { return s.ctx.event.ID }

// Event returns a copy of the opening event.
func (s *Span) Event() Event { return s.ctx.event }

// Children returns the events logged under this span while it was the
// innermost open span. Observational only; the persisted hierarchy
// lives in ParentID references.
func (s *Span) Children() []Event {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	out := make([]Event, len(s.ctx.children))
	copy(out, s.ctx.children)
	return out
}

// End pops the span off the context stack. If the opener was an
// agent/start event, End also persists the matching agent/end event,
// parented to the opener's own parent so the start/end pair sit as
// siblings. End is idempotent; calling it on an already-closed span
// does nothing.
func (s *Span) End() error {
	t := s.tracer
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.ended {
		return nil
	}
	s.ended = true
	t.removeLocked(s.ctx)

	if s.ctx.event.Type == TraceAgent && s.ctx.event.Action == ActionStart {
		end, err := NewEvent(TraceAgent, ActionEnd, s.ctx.event.ParentID, nil)
		if err != nil {
			return err
		}
		if err := t.backend.Save(end); err != nil {
			return err
		}
	}
	return nil
}

// Run wraps fn in a span that is guaranteed to close on every exit
// path, including panics. fn's error propagates unmodified; an error
// from closing the span is returned only when fn itself succeeded.
func (t *Tracer) Run(typ TraceType, action ActionType, details map[string]any, fn func(*Span) error, opts ...LogOption) (err error) {
	sp, spanErr := t.Span(typ, action, details, opts...)
	if spanErr != nil {
		return spanErr
	}
	defer func() {
		endErr := sp.End()
		if err == nil {
			err = endErr
		}
	}()
	return fn(sp)
}
