// Package mcp traces Model Context Protocol tool handlers. Wrapping a
// handler records every invocation as a tool/call span with a
// tool/respond child, so agent tool use shows up in the same call graph
// as the rest of the trace.
package mcp

import (
	"context"
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	sibyl "github.com/sibylscope/sibyl"
)

// WrapToolHandler returns h instrumented with tracing. A nil tracer
// falls back to the global tracer; with neither configured the handler
// runs untraced. Handler results and errors pass through unmodified;
// when the handler succeeds, a failure persisting the respond event or
// closing the span surfaces as the returned error.
func WrapToolHandler[In, Out any](t *sibyl.Tracer, name string, h mcpsdk.ToolHandlerFor[In, Out]) mcpsdk.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (result *mcpsdk.CallToolResult, output Out, err error) {
		tracer := resolveTracer(t)
		if tracer == nil {
			return h(ctx, req, input)
		}

		sp, err := tracer.Span(sibyl.TraceTool, sibyl.ActionCall, map[string]any{
			"name": name,
			"args": toDetails(input),
		})
		if err != nil {
			return nil, output, err
		}
		defer func() {
			endErr := sp.End()
			if err == nil {
				err = endErr
			}
		}()

		result, output, err = h(ctx, req, input)
		if err != nil {
			tracer.Log(sibyl.TraceTool, sibyl.ActionRespond, map[string]any{
				"name":  name,
				"error": err.Error(),
			}, sibyl.WithParent(sp.ID()))
			return result, output, err
		}

		details := map[string]any{"name": name, "result": toDetails(output)}
		if result != nil && result.IsError {
			details["is_error"] = true
		}
		if _, logErr := tracer.Log(sibyl.TraceTool, sibyl.ActionRespond, details, sibyl.WithParent(sp.ID())); logErr != nil {
			return result, output, logErr
		}
		return result, output, nil
	}
}

func resolveTracer(t *sibyl.Tracer) *sibyl.Tracer {
	if t != nil {
		return t
	}
	return sibyl.GlobalTracer()
}

// toDetails converts a typed value into plain JSON shapes so it embeds
// cleanly in event details. Values that fail to marshal degrade to
// their string form rather than failing the call.
func toDetails(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"unserializable": true}
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data)
	}
	return out
}
