// Package viewer reconstructs and renders the call-graph hierarchy
// from a persisted event stream. It is a pure consumer of the backend
// Load contract: everything here is read-only and best-effort.
package viewer

import (
	"time"

	sibyl "github.com/sibylscope/sibyl"
)

// Node is one event in the reconstructed tree, together with its
// best-effort paired closer and its children in stream order.
type Node struct {
	Event    sibyl.Event  `json:"event"`
	Closer   *sibyl.Event `json:"closer,omitempty"`
	Children []*Node      `json:"children,omitempty"`
}

// Duration returns the opener-to-closer interval for paired nodes and
// false for unpaired ones.
func (n *Node) Duration() (time.Duration, bool) {
	if n.Closer == nil {
		return 0, false
	}
	return n.Closer.Timestamp.Sub(n.Event.Timestamp), true
}

// BuildTree reconstructs the hierarchy from parent_id references and
// folds paired closers into their openers. Events whose parent id does
// not resolve (dangling parents are legal in the stream) surface as
// roots rather than being dropped.
func BuildTree(events []sibyl.Event) []*Node {
	paired := PairEvents(events)

	closerIDs := make(map[uint64]bool, len(paired))
	for _, closer := range paired {
		closerIDs[closer.ID] = true
	}

	nodes := make(map[uint64]*Node, len(events))
	for _, ev := range events {
		if closerIDs[ev.ID] {
			continue
		}
		n := &Node{Event: ev}
		if closer, ok := paired[ev.ID]; ok {
			c := closer
			n.Closer = &c
		}
		nodes[ev.ID] = n
	}

	var roots []*Node
	for _, ev := range events {
		if closerIDs[ev.ID] {
			continue
		}
		n := nodes[ev.ID]
		if ev.ParentID != nil {
			if parent, ok := nodes[*ev.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
