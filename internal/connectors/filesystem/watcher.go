// Package filesystem watches the uploads directory so files copied in by
// hand are indexed without going through the upload command.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("filesystem: watcher closed")

// changeBuffer is the capacity of the channel returned by Watch.
const changeBuffer = 64

// Watcher reports changes to regular files directly inside a directory.
// Hidden files, which include in-progress uploads and .gitkeep, are skipped.
type Watcher struct {
	dir string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher for dir. Nothing is watched until Watch is called.
func New(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.UploadChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("filesystem: already watching")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.watcher = fw

	changes := make(chan domain.UploadChange, changeBuffer)
	go w.run(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- domain.UploadChange) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.dir, err)
		}
	}
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event is not relevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.UploadChange {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return nil
	}

	var changeType domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.UploadChange{Type: domain.ChangeDeleted, Filename: name, Path: event.Name}
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	return &domain.UploadChange{Type: changeType, Filename: name, Path: event.Name}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}
