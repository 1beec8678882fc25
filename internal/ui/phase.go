package ui

import (
	"fmt"
	"io"
	"time"
)

// PhaseDisplay prints one status line per step of a command, kept apart
// from the command's own output.
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a new phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// RenderSuccess renders a completed phase.
// Shows: ● Report written (0.3s). A zero duration omits the timing.
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolComplete, SuccessStyle().Render, name, timing(duration)))
}

// RenderFailed renders a failed phase.
// Shows: ✗ Report failed (2.3s)
func (pd *PhaseDisplay) RenderFailed(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolFail, ErrorStyle().Render, name, timing(duration)))
}

// RenderSkipped renders a skipped phase.
// Shows: ⊘ Report (no profile data)
func (pd *PhaseDisplay) RenderSkipped(name string, reason string) {
	if reason != "" {
		reason = "(" + reason + ")"
	}
	fmt.Fprintln(pd.w, FormatPhase(SymbolSkipped, WarningStyle().Render, name, reason))
}

// CommandPrompt renders the command about to be executed.
// Shows: $ python3 -u profiler.py train.py
func (pd *PhaseDisplay) CommandPrompt(cmd string) {
	fmt.Fprintf(pd.w, "%s %s\n", MutedStyle().Render("$"), cmd)
}

// FormatPhase returns a phase line with its symbol colored by paint and an
// optional muted suffix.
func FormatPhase(symbol string, paint func(...string) string, name string, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("%s %s", paint(symbol), name)
	}
	return fmt.Sprintf("%s %s %s", paint(symbol), name, MutedStyle().Render(suffix))
}

func timing(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return "(" + formatDuration(d) + ")"
}
