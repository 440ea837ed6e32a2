// Package watch reports changes to a set of files. gammac uses it to
// recompile a script when the script or any file it depends on changes.
//
// Change notification comes from inotify on Linux and from polling
// modification times elsewhere. Bursts of events for one file (an editor
// writing, then closing, then touching it) are collapsed into a single
// event after a debounce delay.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"
)

// DefaultDebounce is the delay used when New is given zero.
const DefaultDebounce = 500 * time.Millisecond

// pollInterval is how long a backend sleeps when it has nothing to read.
const pollInterval = 100 * time.Millisecond

// backend is the platform part of a Watcher.
type backend interface {
	add(path string) error
	// wait blocks until at least one watched path changes or ctx is done.
	wait(ctx context.Context) ([]string, error)
	close() error
}

// Watcher delivers the absolute paths of changed files on Events.
type Watcher struct {
	b        backend
	debounce time.Duration
	events   chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New returns a watcher with no files.
func New(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		b:        b,
		debounce: debounce,
		events:   make(chan string, 16),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add starts watching path. Adding a path again is harmless and re-arms it
// after the file was replaced.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return w.b.add(abs)
}

// Events returns the channel changed paths are sent on.
func (w *Watcher) Events() <-chan string { return w.events }

// Run watches until ctx is done. It returns nil when ctx ends the run.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		paths, err := w.b.wait(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		for _, p := range paths {
			w.changed(p)
		}
	}
}

// Close releases the watcher's resources. Pending debounced events are
// dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.mu.Unlock()
	return w.b.close()
}

func (w *Watcher) changed(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.events <- path:
		default: // a change is already pending
		}
	})
}
