package viewer

import (
	"sort"
	"time"

	sibyl "github.com/sibylscope/sibyl"
)

// maxSlowest caps how many slow operations a Summary reports.
const maxSlowest = 10

// Operation is one paired opener/closer interval.
type Operation struct {
	Name     string          `json:"name"`
	Type     sibyl.TraceType `json:"type"`
	Duration time.Duration   `json:"duration"`
}

// Summary aggregates a trace run for the stats view.
type Summary struct {
	Total    int                      `json:"total"`
	ByType   map[sibyl.TraceType]int  `json:"by_type"`
	ByAction map[sibyl.ActionType]int `json:"by_action"`
	Duration time.Duration            `json:"duration"`
	Errors   int                      `json:"errors"`
	Slowest  []Operation              `json:"slowest"`
}

// Summarize computes aggregate metrics over an event stream.
func Summarize(events []sibyl.Event) Summary {
	s := Summary{
		Total:    len(events),
		ByType:   make(map[sibyl.TraceType]int),
		ByAction: make(map[sibyl.ActionType]int),
	}
	if len(events) == 0 {
		return s
	}

	earliest, latest := events[0].Timestamp, events[0].Timestamp
	for _, ev := range events {
		s.ByType[ev.Type]++
		s.ByAction[ev.Action]++
		if _, ok := ev.Details["error"]; ok {
			s.Errors++
		}
		if ev.Timestamp.Before(earliest) {
			earliest = ev.Timestamp
		}
		if ev.Timestamp.After(latest) {
			latest = ev.Timestamp
		}
	}
	s.Duration = latest.Sub(earliest)

	for openerID, closer := range PairEvents(events) {
		for _, ev := range events {
			if ev.ID != openerID {
				continue
			}
			s.Slowest = append(s.Slowest, Operation{
				Name:     operationName(ev),
				Type:     ev.Type,
				Duration: closer.Timestamp.Sub(ev.Timestamp),
			})
			break
		}
	}
	sort.Slice(s.Slowest, func(i, j int) bool {
		return s.Slowest[i].Duration > s.Slowest[j].Duration
	})
	if len(s.Slowest) > maxSlowest {
		s.Slowest = s.Slowest[:maxSlowest]
	}
	return s
}

func operationName(ev sibyl.Event) string {
	if name, ok := ev.Details["name"].(string); ok && name != "" {
		return name
	}
	if fn, ok := ev.Details["function"].(string); ok && fn != "" {
		return fn
	}
	if model, ok := ev.Details["model"].(string); ok && model != "" {
		return model
	}
	return string(ev.Type) + "/" + string(ev.Action)
}
