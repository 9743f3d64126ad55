package sibyl

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a trace type or action outside its closed
// enumeration. Check with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// CorruptRecordError reports a persisted line that cannot be parsed
// back into an Event. Line numbers start at 1.
type CorruptRecordError struct {
	Line int
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record at line %d: %v", e.Line, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }
