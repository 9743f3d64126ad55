package sibyl

import "testing"

func TestMemoryBackendOrderAndCopy(t *testing.T) {
	b := NewMemoryBackend()

	first := newTestEvent(t, TraceUser, ActionInput, map[string]any{"message": "hi"})
	second := newTestEvent(t, TraceAgent, ActionStart, nil)
	for _, ev := range []Event{first, second} {
		if err := b.Save(ev); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != first.ID || loaded[1].ID != second.ID {
		t.Fatalf("unexpected load result: %v", loaded)
	}

	// Mutating the returned slice must not affect the backend.
	loaded[0] = loaded[1]
	again, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again[0].ID != first.ID {
		t.Error("Load did not return a defensive copy")
	}
}

func TestMemoryBackendFlushNoOp(t *testing.T) {
	b := NewMemoryBackend()
	if err := b.Flush(); err != nil {
		t.Fatalf("flush on empty backend: %v", err)
	}
	if err := b.Save(newTestEvent(t, TraceTool, ActionCall, nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	loaded, _ := b.Load()
	if len(loaded) != 1 {
		t.Fatalf("expected 1 event, got %d", len(loaded))
	}
}
