package dashboard

import (
	"fmt"
	"io"
	"sync"

	"github.com/rileyhilliard/profdash/internal/protocol"
	"github.com/rileyhilliard/profdash/internal/ui"
	"github.com/rileyhilliard/profdash/internal/util"
)

// PlainPanel writes each message as text. It stands in for the dashboard
// when stdout is not a terminal.
type PlainPanel struct {
	mu   sync.Mutex
	w    io.Writer
	last *protocol.ProfilerData

	*Bridge
}

// NewPlainPanel creates a panel writing to w.
func NewPlainPanel(w io.Writer, title string) *PlainPanel {
	p := &PlainPanel{w: w}
	p.Bridge = NewBridge(nil)
	if title != "" {
		fmt.Fprintln(w, heading(title))
	}
	return p
}

// Post writes one message.
func (p *PlainPanel) Post(m protocol.Message) error {
	if p.Disposed() {
		return ErrPanelClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch m.Type {
	case protocol.TypeRealtime:
		if m.Sample == nil {
			return fmt.Errorf("realtime message without sample")
		}
		s := m.Sample
		line := fmt.Sprintf("[%s] cpu %s%%  mem %s MB", s.Time, FormatFloat(s.CPU), FormatFloat(s.Mem))
		if s.Functions != "" {
			line += "  " + s.Functions
		}
		fmt.Fprintln(p.w, line)

	case protocol.TypeProfile:
		if m.Profile == nil {
			return fmt.Errorf("profile message without data")
		}
		data := *m.Profile
		p.last = &data
		n, f := len(data.RealTimeData), len(data.FunctionStats)
		fmt.Fprintf(p.w, "%s %d %s, %d %s\n", ui.SymbolComplete,
			n, util.Pluralize(n, "sample", "samples"),
			f, util.Pluralize(f, "function", "functions"))
		if table := StatsTable(data.FunctionStats); table != "" {
			fmt.Fprintln(p.w, table)
		}

	case protocol.TypeError:
		// The host prints alerts; write here only when nobody listens.
		if !p.Bridge.alert(protocol.NewAlert(m.Content)) {
			fmt.Fprintf(p.w, "%s %s\n", ui.SymbolFail, m.Content)
		}

	default:
		return fmt.Errorf("unsupported message type %q", m.Type)
	}
	return nil
}

// Exited writes the final status line.
func (p *PlainPanel) Exited(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code == 0 {
		fmt.Fprintf(p.w, "%s profiler finished\n", ui.SymbolSuccess)
	}
}

// Reset starts a new section for a re-run.
func (p *PlainPanel) Reset(title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
	fmt.Fprintf(p.w, "\n%s\n", heading(title))
	return nil
}

func heading(title string) string {
	return ui.InfoStyle().Render("profiling " + title)
}

// LastProfile returns the most recent function statistics.
func (p *PlainPanel) LastProfile() (protocol.ProfilerData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return protocol.ProfilerData{}, false
	}
	return *p.last, true
}

// Close disposes the panel.
func (p *PlainPanel) Close() {
	p.Dispose()
}

// StatsTable renders function statistics, longest total time first, as a
// static table.
func StatsTable(stats []protocol.FunctionStat) string {
	sorted := protocol.SortStats(stats)
	rows := make([][]string, len(sorted))
	for i, s := range sorted {
		rows[i] = statRow(s)
	}

	cols := make([]ui.TableColumn, len(statsColumns))
	for i, c := range statsColumns {
		cols[i] = ui.TableColumn{Title: c.Title, Width: c.Width}
	}
	return ui.RenderSimpleTable(cols, rows)
}
