package sibyl

import (
	"context"
	"fmt"
)

// ToolFunc is the function signature the wrap helpers guard: one named
// operation taking free-form arguments.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// LLMFunc is a prompt-in, completion-out model call.
type LLMFunc func(ctx context.Context, prompt string) (string, error)

// WrapOption adjusts how WrapFunc classifies the events it emits.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	typ    TraceType
	action ActionType
}

// WithTraceType overrides the trace type WrapFunc records.
func WithTraceType(typ TraceType) WrapOption {
	return func(c *wrapConfig) { c.typ = typ }
}

// WithAction overrides the action WrapFunc records.
func WithAction(action ActionType) WrapOption {
	return func(c *wrapConfig) { c.action = action }
}

// WrapFunc returns fn instrumented with a span (agent/process by
// default) and a respond event carrying the result or error. A nil
// tracer falls back to the global tracer; with neither configured the
// returned function calls through untraced.
//
// When fn succeeds, a failure persisting the respond event or closing
// the span surfaces as the returned error; when fn fails, fn's error
// takes precedence.
func WrapFunc(t *Tracer, name string, fn ToolFunc, opts ...WrapOption) ToolFunc {
	cfg := wrapConfig{typ: TraceAgent, action: ActionProcess}
	for _, o := range opts {
		o(&cfg)
	}

	return func(ctx context.Context, args map[string]any) (result any, err error) {
		tracer := resolveTracer(t)
		if tracer == nil {
			return fn(ctx, args)
		}

		details := map[string]any{"function": name}
		if args != nil {
			details["args"] = args
		}
		sp, err := tracer.Span(cfg.typ, cfg.action, details)
		if err != nil {
			return nil, err
		}
		defer func() {
			endErr := sp.End()
			if err == nil {
				err = endErr
			}
		}()

		result, err = fn(ctx, args)
		if err != nil {
			tracer.Log(cfg.typ, ActionRespond, errorDetails(err), WithParent(sp.ID()))
			return nil, err
		}
		if _, logErr := tracer.Log(cfg.typ, ActionRespond, map[string]any{"result": result}, WithParent(sp.ID())); logErr != nil {
			return nil, logErr
		}
		return result, nil
	}
}

// WrapTool returns fn instrumented as a tool call: a tool/call span
// around the invocation and a tool/respond child with the result or
// error. Error precedence matches WrapFunc.
func WrapTool(t *Tracer, name string, fn ToolFunc) ToolFunc {
	return func(ctx context.Context, args map[string]any) (result any, err error) {
		tracer := resolveTracer(t)
		if tracer == nil {
			return fn(ctx, args)
		}

		details := map[string]any{"name": name}
		if args != nil {
			details["args"] = args
		}
		sp, err := tracer.Span(TraceTool, ActionCall, details)
		if err != nil {
			return nil, err
		}
		defer func() {
			endErr := sp.End()
			if err == nil {
				err = endErr
			}
		}()

		result, err = fn(ctx, args)
		if err != nil {
			d := errorDetails(err)
			d["name"] = name
			tracer.Log(TraceTool, ActionRespond, d, WithParent(sp.ID()))
			return nil, err
		}
		if _, logErr := tracer.Log(TraceTool, ActionRespond, map[string]any{"name": name, "result": result}, WithParent(sp.ID())); logErr != nil {
			return nil, logErr
		}
		return result, nil
	}
}

// WrapLLM returns fn instrumented as a model call: an llm/request span
// carrying the prompt and an llm/respond child with the completion or
// error. Error precedence matches WrapFunc.
func WrapLLM(t *Tracer, model string, fn LLMFunc) LLMFunc {
	return func(ctx context.Context, prompt string) (response string, err error) {
		tracer := resolveTracer(t)
		if tracer == nil {
			return fn(ctx, prompt)
		}

		sp, err := tracer.Span(TraceLLM, ActionRequest, map[string]any{
			"model": model,
			"args":  map[string]any{"prompt": prompt},
		})
		if err != nil {
			return "", err
		}
		defer func() {
			endErr := sp.End()
			if err == nil {
				err = endErr
			}
		}()

		response, err = fn(ctx, prompt)
		if err != nil {
			d := errorDetails(err)
			d["model"] = model
			tracer.Log(TraceLLM, ActionRespond, d, WithParent(sp.ID()))
			return "", err
		}
		if _, logErr := tracer.Log(TraceLLM, ActionRespond, map[string]any{"model": model, "response": response}, WithParent(sp.ID())); logErr != nil {
			return "", logErr
		}
		return response, nil
	}
}

func resolveTracer(t *Tracer) *Tracer {
	if t != nil {
		return t
	}
	return GlobalTracer()
}

func errorDetails(err error) map[string]any {
	return map[string]any{
		"error":      err.Error(),
		"error_type": fmt.Sprintf("%T", err),
	}
}
