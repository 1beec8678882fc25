// Package watch re-runs the profiler when the target file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to one file.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   string
	debounce time.Duration
	log      logger.Logger
}

// New watches path. The parent directory is watched so saves that replace the
// file through a rename are still seen.
func New(path string, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Noop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't resolve the file to watch", "")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrHost,
			"Couldn't start the file watcher",
			"Check the system limit on inotify watches")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.WrapWithCode(err, errors.ErrHost,
			"Couldn't watch "+filepath.Dir(abs), "")
	}

	return &Watcher{fsw: fsw, target: filepath.Clean(abs), debounce: debounce, log: log}, nil
}

// Target returns the watched file.
func (w *Watcher) Target() string { return w.target }

// Changes emits once per debounce window in which the target was written,
// created, or renamed into place. The channel closes when ctx ends or the
// watcher is closed.
func (w *Watcher) Changes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)

		// fire is nil while no change is pending.
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !w.relevant(ev) {
					continue
				}
				w.log.Debug("watch: %s", ev)
				fire = time.After(w.debounce)

			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch: %v", err)
			}
		}
	}()

	return out
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
