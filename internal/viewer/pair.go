package viewer

import sibyl "github.com/sibylscope/sibyl"

// closes reports whether closer completes opener: request→respond,
// call→respond, start→end, matched by the closer's parent_id equalling
// the opener's id.
func closes(opener, closer sibyl.Event) bool {
	if closer.ParentID == nil || *closer.ParentID != opener.ID {
		return false
	}
	switch opener.Action {
	case sibyl.ActionRequest, sibyl.ActionCall:
		return closer.Action == sibyl.ActionRespond
	case sibyl.ActionStart:
		return closer.Action == sibyl.ActionEnd
	}
	return false
}

// PairEvents matches openers to their closing events, returning a map
// from opener id to closer. Each closer is consumed at most once, in
// stream order. Unmatched openers simply stay absent from the map, and
// unmatched closers stay ordinary events — pairing is a display
// heuristic, never a correctness requirement.
func PairEvents(events []sibyl.Event) map[uint64]sibyl.Event {
	paired := make(map[uint64]sibyl.Event)
	consumed := make(map[uint64]bool)

	for _, opener := range events {
		switch opener.Action {
		case sibyl.ActionRequest, sibyl.ActionCall, sibyl.ActionStart:
		default:
			continue
		}
		for _, candidate := range events {
			if consumed[candidate.ID] || candidate.ID == opener.ID {
				continue
			}
			if closes(opener, candidate) {
				paired[opener.ID] = candidate
				consumed[candidate.ID] = true
				break
			}
		}
	}
	return paired
}
