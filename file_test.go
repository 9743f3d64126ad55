package sibyl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEvent(t *testing.T, typ TraceType, action ActionType, details map[string]any) Event {
	t.Helper()
	ev, err := NewEvent(typ, action, nil, details)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	b := NewFileBackend(path)

	parent := uint64(99)
	saved := []Event{
		newTestEvent(t, TraceUser, ActionInput, map[string]any{"message": "hi"}),
		newTestEvent(t, TraceAgent, ActionStart, nil),
		newTestEvent(t, TraceTool, ActionCall, map[string]any{"name": "x", "count": "3"}),
	}
	saved[2].ParentID = &parent

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

func TestFileBackendBufferingBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	b := NewFileBackend(path)

	for i := 0; i < DefaultBufferSize-1; i++ {
		if err := b.Save(newTestEvent(t, TraceAgent, ActionProcess, nil)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected 0 visible events before threshold, got %d", len(loaded))
	}

	// The 10th save crosses the threshold and flushes automatically.
	if err := b.Save(newTestEvent(t, TraceAgent, ActionProcess, nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err = b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != DefaultBufferSize {
		t.Fatalf("expected %d visible events after threshold, got %d", DefaultBufferSize, len(loaded))
	}
}

func TestFileBackendFlushIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	b := NewFileBackend(path)

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

func TestFileBackendCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "trace.jsonl")
	b := NewFileBackend(path)

	if err := b.Save(newTestEvent(t, TraceUser, ActionInput, nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected trace file to exist: %v", err)
	}
}

func TestFileBackendLoadMissingFile(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "never-written.jsonl"))
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty slice, got %d events", len(loaded))
	}
}

func TestFileBackendLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	content := `{"timestamp":"2026-08-23T10:00:00.000Z","type":"user","action":"input","id":1,"parent_id":null,"details":{}}

{"timestamp":"2026-08-23T10:00:01.000Z","type":"agent","action":"start","id":2,"parent_id":1,"details":{}}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := NewFileBackend(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}
	if loaded[1].ParentID == nil || *loaded[1].ParentID != 1 {
		t.Errorf("expected parent 1 on second event")
	}
}

func TestFileBackendLoadCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	content := `{"timestamp":"2026-08-23T10:00:00.000Z","type":"user","action":"input","id":1,"parent_id":null,"details":{}}
this line is garbage
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFileBackend(path).Load()
	var corrupt *CorruptRecordError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptRecordError, got %v", err)
	}
	if corrupt.Line != 2 {
		t.Errorf("expected line 2, got %d", corrupt.Line)
	}
}

func TestFileBackendFlushErrorKeepsBuffer(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	// Parent "directory" is a regular file, so MkdirAll fails.
	b := NewFileBackend(filepath.Join(blocker, "trace.jsonl"), WithBufferSize(1))
	err := b.Save(newTestEvent(t, TraceUser, ActionInput, nil))
	if err == nil {
		t.Fatal("expected save to surface the flush failure")
	}
	// Retry fails the same way: the buffer was not discarded.
	if err := b.Flush(); err == nil {
		t.Fatal("expected retry to fail while sink is unwritable")
	}
}

func TestFileBackendAutoPath(t *testing.T) {
	restoreDir := SetOption(OptionOutputDir, t.TempDir())
	defer restoreDir()
	restorePrefix := SetOption(OptionFilePrefix, "session")
	defer restorePrefix()

	b := NewFileBackend("")
	base := filepath.Base(b.Path())
	if !strings.HasPrefix(base, "session_") || !strings.HasSuffix(base, ".jsonl") {
		t.Errorf("unexpected auto-generated name %q", base)
	}
	if filepath.Dir(b.Path()) != Option(OptionOutputDir) {
		t.Errorf("expected file under configured output dir, got %q", b.Path())
	}
}
