package sibyl

import "sync"

// MemoryBackend holds events in an in-process ordered list. Intended
// for tests and in-process analysis; Flush is a no-op because nothing
// buffers.
type MemoryBackend struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Save appends one event.
func (b *MemoryBackend) Save(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

// Flush does nothing; saves are immediately visible.
func (b *MemoryBackend) Flush() error { return nil }

// Load returns a defensive copy of the stored events in save order.
func (b *MemoryBackend) Load() ([]Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out, nil
}
