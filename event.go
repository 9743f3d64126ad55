package sibyl

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TraceType classifies the actor that produced an event.
type TraceType string

const (
	TraceUser  TraceType = "user"
	TraceAgent TraceType = "agent"
	TraceLLM   TraceType = "llm"
	TraceTool  TraceType = "tool"
)

// Valid reports whether t is a member of the closed trace type set.
func (t TraceType) Valid() bool {
	switch t {
	case TraceUser, TraceAgent, TraceLLM, TraceTool:
		return true
	}
	return false
}

// ActionType is the phase or verb of an event.
type ActionType string

const (
	ActionInput   ActionType = "input"
	ActionStart   ActionType = "start"
	ActionEnd     ActionType = "end"
	ActionProcess ActionType = "process"
	ActionRequest ActionType = "request"
	ActionRespond ActionType = "respond"
	ActionCall    ActionType = "call"
)

// Valid reports whether a is a member of the closed action set.
func (a ActionType) Valid() bool {
	switch a {
	case ActionInput, ActionStart, ActionEnd, ActionProcess,
		ActionRequest, ActionRespond, ActionCall:
		return true
	}
	return false
}

// TimestampLayout is the wire format for event timestamps: ISO-8601
// with millisecond precision and a literal UTC designator.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Event is one immutable record of a traced occurrence. The parent/child
// hierarchy lives entirely in ParentID references; an Event never owns
// its parent or children.
type Event struct {
	Timestamp time.Time
	Type      TraceType
	Action    ActionType
	ID        uint64
	ParentID  *uint64 // nil for root events
	Details   map[string]any
}

// NewEvent constructs an Event with a freshly generated unique ID and
// the current UTC timestamp. It fails only when typ or action fall
// outside their closed sets.
func NewEvent(typ TraceType, action ActionType, parentID *uint64, details map[string]any) (Event, error) {
	if !typ.Valid() {
		return Event{}, fmt.Errorf("sibyl: trace type %q: %w", typ, ErrInvalidArgument)
	}
	if !action.Valid() {
		return Event{}, fmt.Errorf("sibyl: action %q: %w", action, ErrInvalidArgument)
	}
	if details == nil {
		details = map[string]any{}
	}
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Action:    action,
		ID:        newEventID(),
		ParentID:  parentID,
		Details:   details,
	}, nil
}

// newEventID takes the upper 64 bits of a version-4 UUID, giving a
// crypto-random identifier with negligible collision probability
// within a trace run.
func newEventID() uint64 {
	u := uuid.New()
	return binary.BigEndian.Uint64(u[:8])
}

// eventJSON fixes the wire field set and order.
type eventJSON struct {
	Timestamp string         `json:"timestamp"`
	Type      TraceType      `json:"type"`
	Action    ActionType     `json:"action"`
	ID        uint64         `json:"id"`
	ParentID  *uint64        `json:"parent_id"`
	Details   map[string]any `json:"details"`
}

// MarshalJSON encodes the event in the persisted line format, with the
// timestamp truncated to millisecond precision.
func (e Event) MarshalJSON() ([]byte, error) {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	return json.Marshal(eventJSON{
		Timestamp: e.Timestamp.UTC().Format(TimestampLayout),
		Type:      e.Type,
		Action:    e.Action,
		ID:        e.ID,
		ParentID:  e.ParentID,
		Details:   details,
	})
}

// UnmarshalJSON decodes a persisted line back into an Event, validating
// the closed enumerations and the timestamp layout.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimestampLayout, raw.Timestamp, time.UTC)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw.Timestamp, err)
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("trace type %q: %w", raw.Type, ErrInvalidArgument)
	}
	if !raw.Action.Valid() {
		return fmt.Errorf("action %q: %w", raw.Action, ErrInvalidArgument)
	}
	if raw.Details == nil {
		raw.Details = map[string]any{}
	}
	*e = Event{
		Timestamp: ts,
		Type:      raw.Type,
		Action:    raw.Action,
		ID:        raw.ID,
		ParentID:  raw.ParentID,
		Details:   raw.Details,
	}
	return nil
}
