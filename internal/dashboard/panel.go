// Package dashboard renders the profiler's realtime samples and function
// statistics as a Bubble Tea TUI, with a plain line-oriented fallback for
// non-terminal output.
package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/profdash/internal/protocol"
)

// Panel is the interactive dashboard: a Bubble Tea program plus the bridge
// that feeds it.
type Panel struct {
	*Bridge
	program *tea.Program
}

// NewPanel creates a dashboard for opts. Messages posted before Run starts
// block until the program is running.
func NewPanel(opts Options, programOpts ...tea.ProgramOption) *Panel {
	b := NewBridge(nil)
	opts.Notify = func(a protocol.Alert) { b.alert(a) }

	p := tea.NewProgram(NewModel(opts), programOpts...)
	b.sender = p

	return &Panel{Bridge: b, program: p}
}

// Run shows the dashboard until the user quits, then fires the dispose
// handlers. It returns the final model so callers can report on the run.
func (p *Panel) Run() (Model, error) {
	final, err := p.program.Run()
	p.Dispose()

	m, _ := final.(Model)
	return m, err
}

// Quit asks the program to exit.
func (p *Panel) Quit() {
	p.program.Quit()
}
