package viewer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault coalesces bursts of file events: the trace writer
// flushes whole buffers, which can land as several write events.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the fallback polling interval when fsnotify is
// unavailable on the platform or filesystem.
const pollDefault = 2 * time.Second

// Follow invokes onChange whenever the trace file at path changes.
// Blocks until ctx is cancelled. The watch covers the parent directory
// so it survives the file not existing yet.
func Follow(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return followPoll(ctx, path, onChange)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return followPoll(ctx, path, onChange)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	timer := time.NewTimer(debounceDefault)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				name = event.Name
			}
			if name != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(debounceDefault)
			pending = true
		case <-timer.C:
			pending = false
			onChange()
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// followPoll is the degraded mode: stat the file on an interval and
// fire on any size or mtime change.
func followPoll(ctx context.Context, path string, onChange func()) error {
	var lastSize int64
	var lastMod time.Time
	if info, err := os.Stat(path); err == nil {
		lastSize, lastMod = info.Size(), info.ModTime()
	}

	ticker := time.NewTicker(pollDefault)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.Size() != lastSize || !info.ModTime().Equal(lastMod) {
				lastSize, lastMod = info.Size(), info.ModTime()
				onChange()
			}
		}
	}
}
