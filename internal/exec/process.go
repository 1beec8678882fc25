package exec

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rileyhilliard/profdash/internal/errors"
)

// Process is a running child with piped stdout and stderr.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	waitOnce sync.Once
	code     int
	waitErr  error
}

// Start launches c. Cancelling ctx kills the child.
func Start(ctx context.Context, c Command) (*Process, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't create stdout pipe",
			"This shouldn't happen - please report this bug!")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't create stderr pipe",
			"This shouldn't happen - please report this bug!")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't start the profiler",
			"Make sure the interpreter and profiler script exist. Run 'profdash init' to configure them.")
	}

	return &Process{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// Stdout returns the child's standard output.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stderr returns the child's standard error.
func (p *Process) Stderr() io.Reader { return p.stderr }

// PID returns the child's process id.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Wait blocks until the child exits and returns its exit code. Both output
// streams must be read to EOF before calling Wait. A non-zero exit is not an
// error; a child killed by a signal reports -1. Safe to call repeatedly.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			p.code = exitErr.ExitCode()
			return
		}
		p.code = -1
		p.waitErr = errors.WrapWithCode(err, errors.ErrExec,
			"Failed waiting for the profiler", "")
	})
	return p.code, p.waitErr
}

// Kill terminates the child. Killing a process that already exited is a no-op.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	if err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't stop the profiler", "")
	}
	return nil
}
