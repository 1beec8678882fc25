package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// spinnerFrames is a rotating half-filled circle.
var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

const spinnerTick = 100 * time.Millisecond

// Spinner animates a single status line on stderr while a slow step runs,
// then replaces it with a result line and the time taken.
type Spinner struct {
	mu      sync.Mutex
	label   string
	frame   int
	started time.Time
	output  func(string)
	width   int // runes on the line currently drawn

	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner with the given label.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		label:  label,
		output: func(s string) { fmt.Fprint(os.Stderr, s) },
	}
}

// SetOutput redirects what the spinner draws.
func (s *Spinner) SetOutput(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = fn
}

// SetLabel changes the text shown next to the spinner and on the result line.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Start draws the first frame and begins animating. Starting twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.drawLocked()
	s.mu.Unlock()

	go s.animate(stop, done)
}

// Finish stops the animation and prints ● label, or ✗ label when err is set.
func (s *Spinner) Finish(err error) {
	s.halt()

	symbol, style := SymbolComplete, SuccessStyle()
	if err != nil {
		symbol, style = SymbolFail, ErrorStyle()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.output(fmt.Sprintf("%s %s %s\n",
		style.Render(symbol), s.label, MutedStyle().Render(formatDuration(s.elapsedLocked()))))
}

// halt stops the animation goroutine and waits for it.
func (s *Spinner) halt() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	style := lipgloss.NewStyle().Foreground(GradientColors[(s.frame/2)%len(GradientColors)])
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)
	s.clearLocked()
	s.output("\r" + line)
	s.width = len([]rune(line))
}

func (s *Spinner) clearLocked() {
	if s.width == 0 {
		return
	}
	s.output("\r" + strings.Repeat(" ", s.width) + "\r")
	s.width = 0
}

func (s *Spinner) elapsedLocked() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
