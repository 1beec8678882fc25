package registry

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pderrors "github.com/rileyhilliard/profdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire_RejectsSecondSession(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	lease, err := r.TryAcquire(path, "python -u universal_profiler.py script.py")
	require.NoError(t, err)
	defer lease.Release()

	_, err = r.TryAcquire(path, "again")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.True(t, pderrors.IsCode(err, pderrors.ErrSession))
	assert.Contains(t, err.Error(), "script.py is already being profiled")
	assert.Contains(t, err.Error(), "universal_profiler.py")
}

func TestTryAcquire_SamePathDifferentSpelling(t *testing.T) {
	r := New()
	dir := t.TempDir()

	lease, err := r.TryAcquire(filepath.Join(dir, "a", "..", "script.py"), "")
	require.NoError(t, err)
	defer lease.Release()

	_, err = r.TryAcquire(filepath.Join(dir, "script.py"), "")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestTryAcquire_DifferentFilesIndependent(t *testing.T) {
	r := New()
	dir := t.TempDir()

	a, err := r.TryAcquire(filepath.Join(dir, "a.py"), "")
	require.NoError(t, err)
	b, err := r.TryAcquire(filepath.Join(dir, "b.py"), "")
	require.NoError(t, err)

	assert.Len(t, r.Active(), 2)
	a.Release()
	b.Release()
	assert.Empty(t, r.Active())
}

func TestLease_ReleaseIdempotent(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	lease, err := r.TryAcquire(path, "")
	require.NoError(t, err)

	lease.Release()
	lease.Release()

	_, held := r.Holder(path)
	assert.False(t, held)

	again, err := r.TryAcquire(path, "")
	require.NoError(t, err)

	// A stale release from the first lease must not free the second.
	lease.Release()
	_, held = r.Holder(path)
	assert.True(t, held)
	again.Release()

	var nilLease *Lease
	assert.NotPanics(t, func() { nilLease.Release() })
}

func TestAcquire_QueuesUntilRelease(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	first, err := r.TryAcquire(path, "first")
	require.NoError(t, err)

	acquired := make(chan *Lease)
	go func() {
		lease, err := r.Acquire(context.Background(), path, "second")
		if err != nil {
			close(acquired)
			return
		}
		acquired <- lease
	}()

	select {
	case <-acquired:
		t.Fatal("second session must wait while the first is running")
	case <-time.After(50 * time.Millisecond):
	}

	first.Release()

	select {
	case lease, ok := <-acquired:
		require.True(t, ok)
		h, held := r.Holder(path)
		assert.True(t, held)
		assert.Equal(t, "second", h.Command)
		lease.Release()
	case <-time.After(2 * time.Second):
		t.Fatal("second session never acquired")
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	first, err := r.TryAcquire(path, "")
	require.NoError(t, err)
	defer first.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = r.Acquire(ctx, path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, pderrors.IsCode(err, pderrors.ErrSession))
}

func TestAcquire_ManyWaitersSerialized(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := r.Acquire(context.Background(), path, "")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			lease.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, r.Active())
}

func TestAcquireWith(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "script.py")

	first, err := r.AcquireWith(context.Background(), PolicyReject, path, "")
	require.NoError(t, err)

	_, err = r.AcquireWith(context.Background(), PolicyReject, path, "")
	assert.ErrorIs(t, err, ErrLocked)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.AcquireWith(ctx, PolicyQueue, path, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	first.Release()
}

func TestHolder_String(t *testing.T) {
	h := Holder{Command: "python -u p.py x.py", Started: time.Now().Add(-3 * time.Minute), PID: 42}
	s := h.String()
	assert.Contains(t, s, "python -u p.py x.py")
	assert.Contains(t, s, "pid 42")
	assert.Contains(t, s, "3 minutes ago")
	assert.InDelta(t, float64(3*time.Minute), float64(h.Age()), float64(time.Second))
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
