//go:build !linux

package watch

import (
	"context"
	"os"
	"sync"
	"time"
)

// pollBackend compares modification times; used where inotify is not
// available.
type pollBackend struct {
	mu     sync.Mutex
	mtimes map[string]time.Time
}

func newBackend() (backend, error) {
	return &pollBackend{mtimes: make(map[string]time.Time)}, nil
}

func (b *pollBackend) add(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.mtimes[path] = fi.ModTime()
	b.mu.Unlock()
	return nil
}

func (b *pollBackend) wait(ctx context.Context) ([]string, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		var out []string
		b.mu.Lock()
		for path, old := range b.mtimes {
			var mt time.Time
			if fi, err := os.Stat(path); err == nil {
				mt = fi.ModTime()
			}
			if !mt.Equal(old) {
				b.mtimes[path] = mt
				out = append(out, path)
			}
		}
		b.mu.Unlock()
		if len(out) > 0 {
			return out, nil
		}
	}
}

func (b *pollBackend) close() error { return nil }
