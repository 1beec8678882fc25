// Package terminal runs the profiler in a visible terminal instead of the
// dashboard, so the user sees its raw output.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/util"
)

// WindowName is the tmux window created for the profiler.
const WindowName = "profdash"

// Terminal opens commands in tmux when running inside it, or in the current
// terminal otherwise.
type Terminal struct {
	Getenv func(string) string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    logger.Logger

	run     func(ctx context.Context, cmd, dir string, stdin io.Reader, stdout, stderr io.Writer) (int, error)
	capture func(ctx context.Context, cmd, dir string) ([]byte, []byte, int, error)
}

// New returns a terminal bound to the process's standard streams.
func New() *Terminal {
	return &Terminal{
		Getenv:  os.Getenv,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     logger.NewEnvLogger("[terminal]"),
		run:     exec.ExecuteLocal,
		capture: exec.ExecuteLocalCapture,
	}
}

// InTmux reports whether the caller runs inside a tmux session.
func (t *Terminal) InTmux() bool {
	return t.Getenv("TMUX") != ""
}

// Open runs command in dir. Inside tmux it starts in a new window and Open
// returns immediately; otherwise it runs attached to the current terminal
// until it exits. The command's exit status is not reported.
func (t *Terminal) Open(ctx context.Context, command, dir string) error {
	if t.InTmux() {
		return t.openTmux(ctx, command, dir)
	}

	code, err := t.run(ctx, command, dir, t.Stdin, t.Stdout, t.Stderr)
	if err != nil {
		return err
	}
	t.Log.Debug("%s exited with code %d", command, code)
	return nil
}

func (t *Terminal) openTmux(ctx context.Context, command, dir string) error {
	newWindow := fmt.Sprintf("tmux new-window -P -F %s -n %s",
		util.ShellQuote("#{window_id}"), WindowName)
	if dir != "" {
		newWindow += " -c " + util.ShellQuote(dir)
	}

	out, stderr, code, err := t.capture(ctx, newWindow, dir)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.New(errors.ErrHost,
			"Couldn't open a tmux window",
			strings.TrimSpace(string(stderr)))
	}

	target := strings.TrimSpace(string(out))
	if target == "" {
		target = WindowName
	}
	sendKeys := fmt.Sprintf("tmux send-keys -t %s %s Enter",
		util.ShellQuote(target), util.ShellQuote(command))

	_, stderr, code, err = t.capture(ctx, sendKeys, dir)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.New(errors.ErrHost,
			"Couldn't send the profiler command to tmux",
			strings.TrimSpace(string(stderr)))
	}
	return nil
}
