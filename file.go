package sibyl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultBufferSize is how many events a FileBackend holds before an
// automatic flush.
const DefaultBufferSize = 10

// maxLineBytes bounds a single persisted line during Load. Prompts and
// tool results can run long, so the bufio default of 64 KiB is too low.
const maxLineBytes = 4 * 1024 * 1024

// FileBackend appends newline-delimited JSON events to a file. Saves
// buffer in memory until the buffer size threshold triggers a flush;
// the parent directory is created on first write.
type FileBackend struct {
	path string

	mu         sync.Mutex
	buffer     []Event
	bufferSize int
}

// FileOption customizes a FileBackend.
type FileOption func(*FileBackend)

// WithBufferSize overrides the automatic flush threshold. Values below
// 1 flush on every save.
func WithBufferSize(n int) FileOption {
	return func(b *FileBackend) { b.bufferSize = n }
}

// NewFileBackend creates a backend writing to path. An empty path
// derives `<prefix>_<timestamp>.jsonl` in the configured output
// directory (see OptionFilePrefix and OptionOutputDir).
func NewFileBackend(path string, opts ...FileOption) *FileBackend {
	if path == "" {
		name := fmt.Sprintf("%s_%s.jsonl", Option(OptionFilePrefix), time.Now().Format("20060102_150405"))
		path = filepath.Join(Option(OptionOutputDir), name)
	}
	b := &FileBackend{path: path, bufferSize: optionBufferSize()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Path returns the file this backend writes to.
func (b *FileBackend) Path() string { return b.path }

// Save buffers one event, flushing when the buffer reaches the
// threshold. A flush failure surfaces here and leaves the buffer
// intact, including the event just saved.
func (b *FileBackend) Save(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = append(b.buffer, event)
	if len(b.buffer) >= b.bufferSize {
		return b.flushLocked()
	}
	return nil
}

// Flush appends all buffered events to the file. Calling with an empty
// buffer is a no-op. Either the whole buffer commits and is cleared, or
// the call fails and the buffer is left intact for a later retry.
func (b *FileBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

func (b *FileBackend) flushLocked() error {
	if len(b.buffer) == 0 {
		return nil
	}

	var lines bytes.Buffer
	for _, event := range b.buffer {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("sibyl: marshal event: %w", err)
		}
		lines.Write(data)
		lines.WriteByte('\n')
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sibyl: create trace directory: %w", err)
		}
	}

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("sibyl: open trace file: %w", err)
	}
	if _, err := f.Write(lines.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("sibyl: write trace file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sibyl: close trace file: %w", err)
	}

	b.buffer = b.buffer[:0]
	return nil
}

// Load parses the file line by line, skipping blank lines, and returns
// the events in append order. A missing file yields an empty slice; a
// malformed line yields a *CorruptRecordError naming it.
func (b *FileBackend) Load() ([]Event, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("sibyl: open trace file: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, &CorruptRecordError{Line: lineNo, Err: err}
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sibyl: read trace file: %w", err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}
