package session

import (
	"context"
	"io"
	"sync"

	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/frame"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/registry"
	"github.com/rileyhilliard/profdash/internal/router"
)

// Session is one supervised profiler run. Three goroutines serve it: a stdout
// reader that owns the frame decoder, a stderr reader, and a waiter that
// reports the exit status once both streams are drained.
type Session struct {
	file    string
	command exec.Command
	proc    ProcessHandle
	panel   Panel
	lease   *registry.Lease
	ctx     context.Context
	cancel  context.CancelFunc
	log     logger.Logger

	done chan struct{}

	mu       sync.Mutex
	code     int
	stopped  bool
	killOnce sync.Once
	killErr  error
}

func (s *Session) run(dec frame.Decoder) {
	r := router.New(panelSink{panel: s.panel, log: s.log}, s.log)

	// Closing the panel stops the profiler.
	s.panel.OnDispose(func() {
		if err := s.Kill(); err != nil {
			s.log.Warn("stopping profiler after panel close: %v", err)
		}
	})

	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		err := frame.Pump(s.ctx, s.proc.Stdout(), dec, func(payload []byte) {
			r.Handle(payload)
		})
		if err != nil && s.ctx.Err() == nil {
			s.log.Warn("reading profiler stdout: %v", err)
		}
	}()
	go func() {
		defer streams.Done()
		err := pumpText(s.ctx, s.proc.Stderr(), r.StderrText)
		if err != nil && s.ctx.Err() == nil {
			s.log.Warn("reading profiler stderr: %v", err)
		}
	}()
	go s.wait(&streams, r)
}

func (s *Session) wait(streams *sync.WaitGroup, r *router.Router) {
	defer close(s.done)
	defer s.cancel()
	defer s.lease.Release()

	streams.Wait()
	code, err := s.proc.Wait()
	if err != nil {
		s.log.Warn("waiting for profiler: %v", err)
	}

	s.mu.Lock()
	s.code = code
	stopped := s.stopped || s.ctx.Err() != nil
	s.mu.Unlock()

	if stopped {
		s.log.Debug("profiler stopped (exit %d)", code)
		return
	}
	s.log.Debug("profiler exited with code %d", code)

	r.Exit(code)
	if n, ok := s.panel.(ExitNotifier); ok {
		n.Exited(code)
	}
}

// pumpText forwards each chunk read from r as text until EOF.
func pumpText(ctx context.Context, r io.Reader, fn func(string)) error {
	chunk := make([]byte, frame.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			fn(string(chunk[:n]))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// File returns the profiled file.
func (s *Session) File() string { return s.file }

// Command returns the profiler invocation.
func (s *Session) Command() exec.Command { return s.command }

// Panel returns the panel the session posts to.
func (s *Session) Panel() Panel { return s.panel }

// Done is closed after the process exited, both streams were drained, and the
// registry lease was released.
func (s *Session) Done() <-chan struct{} { return s.done }

// ExitCode returns the process exit code, or -1 while it is still running or
// when it was killed by a signal.
func (s *Session) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Wait blocks until the session is done or ctx ends.
func (s *Session) Wait(ctx context.Context) (int, error) {
	select {
	case <-s.done:
		return s.ExitCode(), nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// Kill stops the profiler. A killed session reports no exit error to the
// panel. Safe to call more than once and after the process exited.
func (s *Session) Kill() error {
	s.killOnce.Do(func() {
		select {
		case <-s.done:
			return
		default:
		}

		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.killErr = s.proc.Kill()
		s.cancel()
	})
	return s.killErr
}
