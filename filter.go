package sibyl

// FilterBackend wraps another Backend and drops events whose trace type
// is excluded before delegating. Flush and Load pass through unchanged.
type FilterBackend struct {
	inner    Backend
	excluded map[TraceType]struct{}
}

// NewFilterBackend creates a filtering decorator over inner that drops
// events of the excluded trace types.
func NewFilterBackend(inner Backend, excluded ...TraceType) *FilterBackend {
	set := make(map[TraceType]struct{}, len(excluded))
	for _, t := range excluded {
		set[t] = struct{}{}
	}
	return &FilterBackend{inner: inner, excluded: set}
}

// Save forwards the event unless its type is excluded.
func (b *FilterBackend) Save(event Event) error {
	if _, skip := b.excluded[event.Type]; skip {
		return nil
	}
	return b.inner.Save(event)
}

// Flush flushes the wrapped backend.
func (b *FilterBackend) Flush() error { return b.inner.Flush() }

// Load loads from the wrapped backend.
func (b *FilterBackend) Load() ([]Event, error) { return b.inner.Load() }
