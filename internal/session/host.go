// Package session supervises one profiler run: it spawns the profiler against
// the active file, streams its output through the frame decoder and router
// into a dashboard panel, and tears everything down when either side ends.
//
// Editor or terminal specifics live behind HostBridge so the supervisor can be
// driven by the CLI, by tests, or by any other host.
package session

import (
	"context"
	"errors"
	"io"

	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// ErrNoActiveDocument is returned by Launch when the host has no file to
// profile.
var ErrNoActiveDocument = errors.New("no active document to profile")

// HostBridge is what a host environment provides to the supervisor.
type HostBridge interface {
	// ActiveFilePath returns the file the user wants profiled.
	ActiveFilePath() (string, bool)
	// Spawn starts cmd with piped output.
	Spawn(ctx context.Context, cmd exec.Command) (ProcessHandle, error)
	// CreatePanel opens a dashboard titled after the profiled file.
	CreatePanel(title string) (Panel, error)
	// ShowError surfaces a user-facing error.
	ShowError(err error)
}

// ProcessHandle is a running profiler. Both streams are read to EOF before
// Wait is called.
type ProcessHandle interface {
	Stdout() io.Reader
	Stderr() io.Reader
	Wait() (exitCode int, err error)
	Kill() error
}

// Panel receives presentation messages.
type Panel interface {
	Post(msg protocol.Message) error
	OnDispose(fn func())
	OnAlert(fn func(protocol.Alert))
}

// ExitNotifier is implemented by panels that show the final process status.
type ExitNotifier interface {
	Exited(code int)
}

// Resetter is implemented by panels that can be cleared for a re-run.
type Resetter interface {
	Reset(title string) error
}

// AlertShower is implemented by hosts with a notification channel separate
// from ShowError.
type AlertShower interface {
	ShowAlert(alert protocol.Alert)
}
