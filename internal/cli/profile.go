package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/profdash/internal/config"
	"github.com/rileyhilliard/profdash/internal/dashboard"
	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/frame"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/protocol"
	"github.com/rileyhilliard/profdash/internal/registry"
	"github.com/rileyhilliard/profdash/internal/report"
	"github.com/rileyhilliard/profdash/internal/session"
	"github.com/rileyhilliard/profdash/internal/terminal"
	"github.com/rileyhilliard/profdash/internal/ui"
	"github.com/rileyhilliard/profdash/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "profdash-debug.log"

// interruptedExitCode is the conventional status for a run stopped by Ctrl-C.
const interruptedExitCode = 130

// profileOptions holds the flags of the profile command.
type profileOptions struct {
	Terminal bool
	Watch    bool
	Plain    bool
	Report   string
	Framing  string
}

var profileOpts profileOptions

var profileCmd = &cobra.Command{
	Use:   "profile <file.py>",
	Short: "Profile a Python script in the live dashboard",
	Long: `Run a Python script under the profiler and show CPU, memory and
per-function statistics as they arrive.

The dashboard needs an interactive terminal. When stdout is redirected, or
with --plain, samples and statistics are printed as text instead.

Examples:
  profdash profile train.py
  profdash profile --watch app.py
  profdash profile --report profile.md train.py
  profdash profile --terminal train.py`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return newProfiler(profileOpts).Run(ctx, args[0])
	},
}

func init() {
	profileCmd.Flags().BoolVar(&profileOpts.Terminal, "terminal", false, "run the profiler in a terminal (a new tmux window when inside tmux) instead of the dashboard")
	profileCmd.Flags().BoolVarP(&profileOpts.Watch, "watch", "w", false, "re-run the profiler whenever the file is saved")
	profileCmd.Flags().BoolVar(&profileOpts.Plain, "plain", false, "print text output even on a terminal")
	profileCmd.Flags().StringVar(&profileOpts.Report, "report", "", "write a Markdown report of the last run to this file (- for stdout)")
	profileCmd.Flags().StringVar(&profileOpts.Framing, "framing", "", "override framing.mode (braces, last-brace, lines)")
	rootCmd.AddCommand(profileCmd)
}

// profiler runs one profile invocation.
type profiler struct {
	opts   profileOptions
	stdout io.Writer
	stderr io.Writer
	isTTY  func() bool
	log    logger.Logger
}

func newProfiler(opts profileOptions) *profiler {
	return &profiler{
		opts:   opts,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTTY:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
		log:    logger.NewEnvLogger("[profile]"),
	}
}

// Run profiles target until the profiler exits, the dashboard is closed, or
// ctx ends.
func (p *profiler) Run(ctx context.Context, target string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if p.opts.Framing != "" {
		cfg.Framing.Mode = p.opts.Framing
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	file, err := resolveTarget(target)
	if err != nil {
		return err
	}

	python, err := exec.Resolve(ctx, cfg.ProjectRoot(), cfg.Profiler.Python)
	if err != nil {
		return err
	}
	scfg := sessionConfig(cfg, python)
	p.log.Debug("using %s", python)

	if p.opts.Terminal {
		return terminal.New().Open(ctx, scfg.Command(file).Shell(), scfg.Dir)
	}
	if !p.opts.Plain && p.isTTY() {
		return p.runDashboard(ctx, cfg, scfg, file)
	}
	return p.runPlain(ctx, cfg, scfg, file)
}

func (p *profiler) runPlain(ctx context.Context, cfg *config.Config, scfg session.Config, file string) error {
	panel := dashboard.NewPlainPanel(p.stdout, filepath.Base(file))
	defer panel.Close()

	host := newCLIHost(file, panel, p.stderr)
	launcher := session.NewLauncher(host, nil, scfg, p.log)

	ui.NewPhaseDisplay(p.stderr).CommandPrompt(scfg.Command(file).Shell())
	s, err := launcher.Launch(ctx)
	if err != nil {
		return errors.NewExitError(1)
	}

	if p.opts.Watch {
		s = p.watchLoop(ctx, launcher, host, s, cfg.DebounceInterval())
		_ = s.Kill()
		<-s.Done()
		return p.writeReport(file, panel)
	}

	code, err := s.Wait(ctx)
	if err != nil {
		_ = s.Kill()
		<-s.Done()
		return errors.NewExitError(interruptedExitCode)
	}
	if err := p.writeReport(file, panel); err != nil {
		return err
	}
	if code != 0 {
		return errors.NewExitError(code)
	}
	return nil
}

func (p *profiler) runDashboard(ctx context.Context, cfg *config.Config, scfg session.Config, file string) error {
	restore, err := p.redirectLog()
	if err != nil {
		return err
	}
	defer restore()

	panel := dashboard.NewPanel(dashboard.Options{
		Title:   filepath.Base(file),
		Command: scfg.Command(file).Shell(),
		Window:  cfg.Dashboard.Window,
		Refresh: cfg.RefreshInterval(),
	}, tea.WithAltScreen(), tea.WithContext(ctx))

	host := newCLIHost(file, panel, p.stderr)
	host.hold()
	defer host.release()

	launcher := session.NewLauncher(host, nil, scfg, p.log)
	s, err := launcher.Launch(ctx)
	if err != nil {
		return errors.NewExitError(1)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	watched := make(chan *session.Session, 1)
	if p.opts.Watch {
		go func() {
			watched <- p.watchLoop(watchCtx, launcher, host, s, cfg.DebounceInterval())
		}()
	} else {
		watched <- s
	}

	final, runErr := panel.Run()

	stopWatch()
	last := <-watched
	_ = last.Kill()
	<-last.Done()

	if runErr != nil && !stderrors.Is(runErr, tea.ErrProgramKilled) {
		return errors.WrapWithCode(runErr, errors.ErrHost,
			"Dashboard failed",
			"Try --plain for text output")
	}
	if err := p.writeReport(file, final); err != nil {
		return err
	}
	return dashboardExit(ctx, last.ExitCode())
}

// dashboardExit maps the end of a dashboard run to the command's status: 130
// when interrupted, the profiler's own code when it failed before the panel
// was closed. A session killed by closing the panel reports -1 and succeeds.
func dashboardExit(ctx context.Context, code int) error {
	if ctx.Err() != nil {
		return errors.NewExitError(interruptedExitCode)
	}
	if code > 0 {
		return errors.NewExitError(code)
	}
	return nil
}

// watchLoop re-runs the profiler in the same panel each time the file
// changes, until ctx ends. It returns the most recent session.
func (p *profiler) watchLoop(ctx context.Context, launcher *session.Launcher, host session.HostBridge, current *session.Session, debounce time.Duration) *session.Session {
	w, err := watch.New(current.File(), debounce, p.log)
	if err != nil {
		host.ShowError(err)
		<-ctx.Done()
		return current
	}
	defer w.Close()

	for range w.Changes(ctx) {
		_ = current.Kill()
		<-current.Done()

		next, err := launcher.Relaunch(ctx, current.File(), current.Panel())
		if err != nil {
			// Reported through the host; keep watching.
			continue
		}
		current = next
	}
	return current
}

// redirectLog moves standard log output off the terminal while the
// dashboard draws on it: into debugLogFile with --verbose, discarded
// otherwise.
func (p *profiler) redirectLog() (func(), error) {
	prev := log.Writer()
	if !verbose {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }, nil
	}

	f, err := tea.LogToFile(debugLogFile, "profdash")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open "+debugLogFile,
			"Check that the current directory is writable")
	}
	return func() {
		log.SetOutput(prev)
		_ = f.Close()
	}, nil
}

// profileSource yields the data a report is built from.
type profileSource interface {
	LastProfile() (protocol.ProfilerData, bool)
}

// writeReport writes the --report output, if requested.
func (p *profiler) writeReport(file string, src profileSource) error {
	if p.opts.Report == "" {
		return nil
	}
	phases := ui.NewPhaseDisplay(p.stderr)
	data, ok := src.LastProfile()
	if !ok {
		phases.RenderSkipped("Report", "no profile data was recorded")
		return nil
	}
	start := time.Now()

	md := report.Markdown(filepath.Base(file), data)
	if p.opts.Report == "-" {
		out, err := report.Render(md, report.DefaultWidth, p.isTTY() && colorEnabled())
		if err != nil {
			return err
		}
		fmt.Fprint(p.stdout, out)
		return nil
	}

	if err := os.WriteFile(p.opts.Report, []byte(md), 0o644); err != nil {
		phases.RenderFailed("Report", time.Since(start))
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write report to "+p.opts.Report,
			"Check that the directory exists and is writable")
	}
	phases.RenderSuccess("Report written to "+p.opts.Report, time.Since(start))
	return nil
}

// loadConfig finds, loads and validates the config.
func loadConfig(explicit string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(explicit)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveTarget returns the absolute path of an existing regular file.
func resolveTarget(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid path: "+target, "")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't find "+target,
			"Check the path and try again")
	}
	if info.IsDir() {
		return "", errors.New(errors.ErrConfig,
			target+" is a directory",
			"Pass the Python file to profile, e.g. profdash profile main.py")
	}
	return abs, nil
}

// sessionConfig maps the loaded config onto the session supervisor.
func sessionConfig(cfg *config.Config, python string) session.Config {
	return session.Config{
		Python: python,
		Script: cfg.ScriptPath(),
		Args:   cfg.Profiler.Args,
		Dir:    cfg.Dir(),
		Framing: frame.Options{
			Mode:  frame.Mode(cfg.Framing.Mode),
			Start: cfg.Framing.Start,
			End:   cfg.Framing.End,
		},
		Policy: registry.Policy(cfg.Session.Policy),
	}
}
