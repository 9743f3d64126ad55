package sibyl

import (
	"path/filepath"
	"testing"
)

func newTestSQLiteBackend(t *testing.T, opts ...SQLiteOption) *SQLiteBackend {
	t.Helper()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "trace.db"), opts...)
	if err != nil {
		t.Fatalf("NewSQLiteBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	b := newTestSQLiteBackend(t)

	parent := uint64(1) << 63 // exercise the int64 bit reinterpretation
	saved := []Event{
		newTestEvent(t, TraceUser, ActionInput, map[string]any{"message": "hi"}),
		newTestEvent(t, TraceLLM, ActionRequest, map[string]any{"prompt": "say hi"}),
	}
	saved[1].ParentID = &parent

	for _, ev := range saved {
		if err := b.Save(ev); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(saved) {
		t.Fatalf("expected %d events, got %d", len(saved), len(loaded))
	}
	for i := range saved {
		assertEventsEqual(t, saved[i], loaded[i])
	}
}

func TestSQLiteBackendBuffering(t *testing.T) {
	b := newTestSQLiteBackend(t, WithSQLiteBufferSize(3))

	for i := 0; i < 2; i++ {
		if err := b.Save(newTestEvent(t, TraceAgent, ActionProcess, nil)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected 0 visible events before threshold, got %d", len(loaded))
	}

	if err := b.Save(newTestEvent(t, TraceAgent, ActionProcess, nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err = b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 visible events after threshold, got %d", len(loaded))
	}
}

func TestSQLiteBackendFlushIdempotent(t *testing.T) {
	b := newTestSQLiteBackend(t)

	if err := b.Save(newTestEvent(t, TraceUser, ActionInput, nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 event after double flush, got %d", len(loaded))
	}
}

func TestSQLiteBackendEmptyLoad(t *testing.T) {
	b := newTestSQLiteBackend(t)
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty slice, got %d events", len(loaded))
	}
}
