package viewer

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	sibyl "github.com/sibylscope/sibyl"
)

const (
	red    = "\033[0;31m"
	green  = "\033[0;32m"
	cyan   = "\033[0;36m"
	yellow = "\033[1;33m"
	dim    = "\033[2m"
	reset  = "\033[0m"
)

// RenderOptions controls the text tree output.
type RenderOptions struct {
	Color       bool
	MaxDepth    int // 0 means unlimited
	MaxValueLen int // 0 means the default of 80
}

// RenderTree writes an indented text rendering of the call graph.
// Paired closers display merged into their openers with a duration.
func RenderTree(w io.Writer, events []sibyl.Event, opts RenderOptions) {
	if opts.MaxValueLen == 0 {
		opts.MaxValueLen = 80
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for _, root := range BuildTree(events) {
		renderNode(w, root, 0, opts)
	}
}

func renderNode(w io.Writer, n *Node, depth int, opts RenderOptions) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return
	}

	indent := strings.Repeat("  ", depth)
	label := fmt.Sprintf("%s/%s", n.Event.Type, n.Event.Action)
	if opts.Color {
		label = typeColor(n.Event.Type) + label + reset
	}

	line := indent + label
	if d, ok := n.Duration(); ok {
		suffix := fmt.Sprintf("  (%s)", d)
		if opts.Color {
			suffix = dim + suffix + reset
		}
		line += suffix
	}
	if details := formatDetails(n.Event.Details, opts.MaxValueLen); details != "" {
		line += "  " + details
	}
	fmt.Fprintln(w, line)

	if n.Closer != nil {
		if details := formatDetails(n.Closer.Details, opts.MaxValueLen); details != "" {
			arrow := indent + "  → " + details
			if opts.Color {
				arrow = indent + "  " + dim + "→ " + details + reset
			}
			fmt.Fprintln(w, arrow)
		}
	}

	for _, child := range n.Children {
		renderNode(w, child, depth+1, opts)
	}
}

func typeColor(t sibyl.TraceType) string {
	switch t {
	case sibyl.TraceUser:
		return green
	case sibyl.TraceAgent:
		return cyan
	case sibyl.TraceLLM:
		return yellow
	case sibyl.TraceTool:
		return red
	}
	return ""
}

// formatDetails renders details as key=value pairs in sorted key order,
// truncating long values.
func formatDetails(details map[string]any, maxLen int) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+truncate(formatValue(details[k]), maxLen))
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// truncate shortens s to at most maxLen bytes without splitting a
// multi-byte rune. Prompts and completions are routinely non-ASCII.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// WriteSummary writes the stats view as plain text.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "events:   %d\n", s.Total)
	fmt.Fprintf(w, "duration: %s\n", s.Duration)
	fmt.Fprintf(w, "errors:   %d\n", s.Errors)

	fmt.Fprintln(w, "\nby type:")
	for _, t := range []sibyl.TraceType{sibyl.TraceUser, sibyl.TraceAgent, sibyl.TraceLLM, sibyl.TraceTool} {
		if n := s.ByType[t]; n > 0 {
			fmt.Fprintf(w, "  %-6s %d\n", t, n)
		}
	}

	fmt.Fprintln(w, "\nby action:")
	for _, a := range []sibyl.ActionType{
		sibyl.ActionInput, sibyl.ActionStart, sibyl.ActionEnd,
		sibyl.ActionProcess, sibyl.ActionRequest, sibyl.ActionRespond, sibyl.ActionCall,
	} {
		if n := s.ByAction[a]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", a, n)
		}
	}

	if len(s.Slowest) > 0 {
		fmt.Fprintln(w, "\nslowest operations:")
		for _, op := range s.Slowest {
			fmt.Fprintf(w, "  %-24s %-6s %s\n", op.Name, op.Type, op.Duration)
		}
	}
}
