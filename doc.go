// Package sibyl records the call graph of an AI/LLM application as a
// stream of immutable trace events: user input, agent activity, LLM
// requests, and tool calls.
//
// A Tracer hands every event to a Backend — a JSONL file, a SQLite
// database, or an in-memory list — and tracks the currently open span
// so that nested events link to their parent automatically:
//
//	tracer := sibyl.New(sibyl.NewFileBackend("run.jsonl"))
//	userID, _ := tracer.Log(sibyl.TraceUser, sibyl.ActionInput,
//		map[string]any{"message": "hi"})
//
//	sp, _ := tracer.Span(sibyl.TraceAgent, sibyl.ActionStart, nil,
//		sibyl.WithParent(userID))
//	defer sp.End()
//
//	tracer.Log(sibyl.TraceTool, sibyl.ActionCall,
//		map[string]any{"name": "search"}) // parented to sp automatically
//
// The hierarchy lives entirely in parent_id references on the persisted
// events; the viewer rebuilds the tree from a Backend.Load call.
package sibyl
