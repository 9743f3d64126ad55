package sibyl

import "testing"

func TestFilterBackendDropsExcludedTypes(t *testing.T) {
	inner := NewMemoryBackend()
	b := NewFilterBackend(inner, TraceLLM)

	events := []Event{
		newTestEvent(t, TraceUser, ActionInput, map[string]any{"message": "hi"}),
		newTestEvent(t, TraceLLM, ActionRequest, map[string]any{"prompt": "generate"}),
		newTestEvent(t, TraceAgent, ActionProcess, nil),
	}
	for _, ev := range events {
		if err := b.Save(ev); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events after filtering, got %d", len(loaded))
	}
	for _, ev := range loaded {
		if ev.Type == TraceLLM {
			t.Errorf("excluded llm event leaked through: %v", ev)
		}
	}
}

func TestFilterBackendPassesThrough(t *testing.T) {
	inner := NewMemoryBackend()
	b := NewFilterBackend(inner)

	ev := newTestEvent(t, TraceTool, ActionCall, nil)
	if err := b.Save(ev); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	loaded, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != ev.ID {
		t.Fatalf("unexpected load result: %v", loaded)
	}
}

func TestFilterBackendWorksWithTracer(t *testing.T) {
	inner := NewMemoryBackend()
	tracer := New(NewFilterBackend(inner, TraceLLM))

	if _, err := tracer.Log(TraceUser, ActionInput, map[string]any{"message": "hi"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := tracer.Log(TraceLLM, ActionRequest, map[string]any{"prompt": "x"}); err != nil {
		t.Fatalf("log: %v", err)
	}

	loaded, _ := inner.Load()
	if len(loaded) != 1 || loaded[0].Type != TraceUser {
		t.Fatalf("expected only the user event, got %v", loaded)
	}
}
