// Package registry tracks which files have a profiling session running so a
// second invocation against the same file is rejected or queued.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	pderrors "github.com/rileyhilliard/profdash/internal/errors"
)

// Policy decides what happens when a target is already held.
type Policy string

const (
	// PolicyReject fails the second invocation immediately.
	PolicyReject Policy = "reject"
	// PolicyQueue waits until the running session ends.
	PolicyQueue Policy = "queue"
)

// Registry is an in-process set of held targets keyed by absolute path.
type Registry struct {
	mu   sync.Mutex
	held map[string]*entry
}

type entry struct {
	holder   Holder
	released chan struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{held: make(map[string]*entry)}
}

var process = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return process
}

// Key normalizes a path to the registry key.
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", pderrors.WrapWithCode(err, pderrors.ErrSession,
			fmt.Sprintf("Cannot resolve %s", path),
			"Check that the file path is valid")
	}
	return filepath.Clean(abs), nil
}

// TryAcquire takes the target without waiting. If another session holds it,
// the returned error wraps ErrLocked.
func (r *Registry) TryAcquire(path, command string) (*Lease, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.held[key]; ok {
		return nil, pderrors.WrapWithCode(ErrLocked, pderrors.ErrSession,
			fmt.Sprintf("%s is already being profiled", filepath.Base(key)),
			fmt.Sprintf("Held by: %s. Close that dashboard first, or set session.policy to queue.", e.holder))
	}

	e := &entry{holder: newHolder(key, command), released: make(chan struct{})}
	r.held[key] = e
	return &Lease{registry: r, key: key, entry: e}, nil
}

// Acquire waits until the target is free or ctx is done.
func (r *Registry) Acquire(ctx context.Context, path, command string) (*Lease, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}

	for {
		r.mu.Lock()
		e, busy := r.held[key]
		r.mu.Unlock()

		if !busy {
			lease, err := r.TryAcquire(key, command)
			if err == nil {
				return lease, nil
			}
			if !isLocked(err) {
				return nil, err
			}
			// Lost the race; wait on whoever won.
			continue
		}

		select {
		case <-e.released:
		case <-ctx.Done():
			return nil, pderrors.WrapWithCode(ctx.Err(), pderrors.ErrSession,
				fmt.Sprintf("Gave up waiting for %s", filepath.Base(key)),
				fmt.Sprintf("Held by: %s", e.holder))
		}
	}
}

// AcquireWith dispatches to TryAcquire or Acquire according to policy.
func (r *Registry) AcquireWith(ctx context.Context, policy Policy, path, command string) (*Lease, error) {
	if policy == PolicyQueue {
		return r.Acquire(ctx, path, command)
	}
	return r.TryAcquire(path, command)
}

// Holder reports who holds path, if anyone.
func (r *Registry) Holder(path string) (Holder, bool) {
	key, err := Key(path)
	if err != nil {
		return Holder{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.held[key]
	if !ok {
		return Holder{}, false
	}
	return e.holder, true
}

// Active lists every held target ordered by path.
func (r *Registry) Active() []Holder {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Holder, 0, len(r.held))
	for _, e := range r.held {
		out = append(out, e.holder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (r *Registry) release(key string, e *entry) {
	r.mu.Lock()
	if r.held[key] == e {
		delete(r.held, key)
	}
	r.mu.Unlock()
	close(e.released)
}

// Lease is a held target. Release it when the session ends.
type Lease struct {
	registry *Registry
	key      string
	entry    *entry
	once     sync.Once
}

// Path returns the normalized target path.
func (l *Lease) Path() string {
	return l.key
}

// Release frees the target. Calling it more than once is safe.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.registry.release(l.key, l.entry)
	})
}

func isLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}
