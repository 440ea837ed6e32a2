//go:build linux

package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const watchMask = unix.IN_MODIFY | unix.IN_CLOSE_WRITE | unix.IN_ATTRIB |
	unix.IN_MOVE_SELF | unix.IN_DELETE_SELF

type inotifyBackend struct {
	fd int

	mu  sync.Mutex
	wds map[int]string
}

func newBackend() (backend, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %w", err)
	}
	return &inotifyBackend{fd: fd, wds: make(map[int]string)}, nil
}

func (b *inotifyBackend) add(path string) error {
	wd, err := unix.InotifyAddWatch(b.fd, path, watchMask)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	b.mu.Lock()
	b.wds[wd] = path
	b.mu.Unlock()
	return nil
}

func (b *inotifyBackend) wait(ctx context.Context) ([]string, error) {
	buf := make([]byte, (unix.SizeofInotifyEvent+unix.NAME_MAX+1)*16)
	for {
		n, err := unix.Read(b.fd, buf)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading inotify events: %w", err)
		}

		var out []string
		for off := 0; off+unix.SizeofInotifyEvent <= n; {
			ev := (*unix.InotifyEvent)(unsafe.Pointer(&buf[off]))
			off += unix.SizeofInotifyEvent + int(ev.Len)

			b.mu.Lock()
			path, ok := b.wds[int(ev.Wd)]
			if ev.Mask&unix.IN_IGNORED != 0 {
				delete(b.wds, int(ev.Wd))
			}
			b.mu.Unlock()

			if ok && ev.Mask&watchMask != 0 {
				out = append(out, path)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
}

func (b *inotifyBackend) close() error { return unix.Close(b.fd) }
