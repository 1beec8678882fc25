package session

import (
	"context"
	"io"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/frame"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/protocol"
	"github.com/rileyhilliard/profdash/internal/registry"
)

// Config describes how the profiler is invoked and how its output is framed.
type Config struct {
	// Python is the resolved interpreter.
	Python string
	// Script is the profiler script path.
	Script string
	// Args are passed to the script before the target file.
	Args []string
	// Dir is the working directory of the child. Empty means inherit.
	Dir     string
	Framing frame.Options
	Policy  registry.Policy
}

// Command returns the profiler invocation for file.
func (c Config) Command(file string) exec.Command {
	cmd := exec.ProfilerCommand(c.Python, c.Script, c.Args, file)
	cmd.Dir = c.Dir
	return cmd
}

// Launcher starts supervised profiler sessions against a host.
type Launcher struct {
	host     HostBridge
	registry *registry.Registry
	cfg      Config
	log      logger.Logger
}

// NewLauncher creates a launcher. A nil registry means the process-wide one;
// a nil logger discards output.
func NewLauncher(host HostBridge, reg *registry.Registry, cfg Config, log logger.Logger) *Launcher {
	if reg == nil {
		reg = registry.Default()
	}
	if log == nil {
		log = logger.Noop()
	}
	if cfg.Framing.Logger == nil {
		cfg.Framing.Logger = log
	}
	return &Launcher{host: host, registry: reg, cfg: cfg, log: log}
}

// Config returns the launcher configuration.
func (l *Launcher) Config() Config {
	return l.cfg
}

// Target returns the file to profile. With no active document it shows one
// error through the host and returns an error wrapping ErrNoActiveDocument.
func (l *Launcher) Target() (string, error) {
	file, ok := l.host.ActiveFilePath()
	if !ok || file == "" {
		err := errors.WrapWithCode(ErrNoActiveDocument, errors.ErrHost,
			"No active file to profile",
			"Pass a Python file: profdash profile script.py")
		l.host.ShowError(err)
		return "", err
	}
	return file, nil
}

// Launch profiles the host's active file in a new panel. The returned session
// is fully wired; stream and process failures after this point are reported
// in the panel, never as an error from Launch.
func (l *Launcher) Launch(ctx context.Context) (*Session, error) {
	file, err := l.Target()
	if err != nil {
		return nil, err
	}
	return l.start(ctx, file, nil)
}

// Relaunch profiles file again in an existing panel, clearing it first when
// the panel supports that.
func (l *Launcher) Relaunch(ctx context.Context, file string, panel Panel) (*Session, error) {
	if r, ok := panel.(Resetter); ok {
		if err := r.Reset(file); err != nil {
			return nil, err
		}
	}
	return l.start(ctx, file, panel)
}

func (l *Launcher) start(ctx context.Context, file string, panel Panel) (*Session, error) {
	cmd := l.cfg.Command(file)

	dec, err := frame.New(l.cfg.Framing)
	if err != nil {
		l.host.ShowError(err)
		return nil, err
	}

	lease, err := l.registry.AcquireWith(ctx, l.cfg.Policy, file, cmd.Shell())
	if err != nil {
		l.host.ShowError(err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	proc, err := l.host.Spawn(ctx, cmd)
	if err != nil {
		cancel()
		lease.Release()
		l.host.ShowError(err)
		return nil, err
	}
	l.log.Debug("spawned %s", cmd.Shell())

	if panel == nil {
		panel, err = l.host.CreatePanel(file)
		if err != nil {
			_ = proc.Kill()
			go reap(proc, cancel, lease)
			l.host.ShowError(err)
			return nil, err
		}
		panel.OnAlert(l.showAlert)
	}

	s := &Session{
		file:    file,
		command: cmd,
		proc:    proc,
		panel:   panel,
		lease:   lease,
		ctx:     ctx,
		cancel:  cancel,
		log:     l.log,
		done:    make(chan struct{}),
		code:    -1,
	}
	s.run(dec)
	return s, nil
}

func (l *Launcher) showAlert(a protocol.Alert) {
	if h, ok := l.host.(AlertShower); ok {
		h.ShowAlert(a)
		return
	}
	l.host.ShowError(errors.New(errors.ErrSession, a.Text, ""))
}

// reap drains and waits for a process nobody is watching.
func reap(proc ProcessHandle, cancel context.CancelFunc, lease *registry.Lease) {
	defer cancel()
	defer lease.Release()

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, proc.Stderr())
		close(done)
	}()
	_, _ = io.Copy(io.Discard, proc.Stdout())
	<-done
	_, _ = proc.Wait()
}
