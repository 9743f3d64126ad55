package sibyl

// Backend is the durability boundary for trace events. Anything
// implementing save/flush/load conforms; backends compose (see
// FilterBackend) rather than subclass.
//
// Save may buffer internally but must preserve call order in the
// eventual durable representation. Flush is idempotent, forces any
// buffered events out, and is all-or-nothing: on failure the buffer is
// left intact so the caller can retry. Load returns every previously
// persisted event in original append order, or an empty slice when
// nothing has been persisted yet.
type Backend interface {
	Save(Event) error
	Flush() error
	Load() ([]Event, error)
}
