// Package watch provides debounced file system watching for the start
// directory of a build.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the time to wait after the last file event before
// triggering the callback. It is also how long events stay ignored after
// Resume, so that late notifications for files written by a build do not
// start another one.
const debounceDelay = 100 * time.Millisecond

// Watcher watches directories and invokes a callback with debouncing.
type Watcher struct {
	fsw        *fsnotify.Watcher
	mu         sync.Mutex
	timer      *time.Timer
	callback   func()
	paused     bool
	mutedUntil time.Time
}

// New creates a Watcher that monitors the given directories for changes.
// The callback is invoked (debounced) whenever a file change is detected.
func New(paths []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, callback: callback}
	if err := w.Add(paths...); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Add starts watching more directories. Paths already watched are fine.
func (w *Watcher) Add(paths ...string) error {
	for _, p := range paths {
		if err := w.fsw.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Pause drops every event until Resume, cancelling a pending callback.
func (w *Watcher) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Resume accepts events again after one debounce window.
func (w *Watcher) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = false
	w.mutedUntil = time.Now().Add(debounceDelay)
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paused || time.Now().Before(w.mutedUntil) {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.fire)
}

// fire runs the callback unless Pause won the race against an expiring timer.
func (w *Watcher) fire() {
	w.mu.Lock()
	paused := w.paused
	w.mu.Unlock()
	if paused {
		return
	}
	w.callback()
}
