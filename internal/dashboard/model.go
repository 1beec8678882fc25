package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// LayoutMode is the responsive layout picked from the terminal width.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: values and sparklines only.
	LayoutMinimal LayoutMode = iota
	// LayoutStandard adds the braille realtime graph.
	LayoutStandard
	// LayoutWide places the CPU and memory graphs side by side.
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointStandard = 80
	BreakpointWide     = 140
)

// maxAlerts bounds the alert banner.
const maxAlerts = 20

// DefaultRefresh is the header tick interval.
const DefaultRefresh = 250 * time.Millisecond

// Options configures a Model.
type Options struct {
	// Title is the profiled file, shown in the header.
	Title string
	// Command is the profiler invocation, shown in the help view.
	Command string
	// Window is the number of realtime samples kept.
	Window  int
	Refresh time.Duration
	// Notify receives an alert for every error shown in the panel.
	Notify func(protocol.Alert)
}

type alert struct {
	text string
	at   time.Time
}

type focusArea int

const (
	focusGraphs focusArea = iota
	focusTable
)

// Model is the Bubble Tea model for the profiler dashboard. Realtime samples
// and function statistics are independent: a model can be live, summarized,
// both, or neither.
type Model struct {
	opts Options

	window     *Window
	cpuHistory []float64
	memHistory []float64
	series     []protocol.RealtimeSample
	stats      []protocol.FunctionStat
	table      table.Model
	alerts     []alert
	received   int

	live       bool
	summarized bool
	exited     bool
	exitCode   int
	started    time.Time
	finished   time.Time

	width        int
	height       int
	focus        focusArea
	keys         keyMap
	help         help.Model
	spinnerFrame int
	quitting     bool
}

// NewModel creates an empty dashboard.
func NewModel(opts Options) Model {
	if opts.Window <= 0 {
		opts.Window = DefaultWindowSize
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}

	return Model{
		opts:    opts,
		window:  NewWindow(opts.Window),
		table:   newStatsTable(),
		started: time.Now(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

var statsColumns = []table.Column{
	{Title: "Function", Width: 36},
	{Title: "Calls", Width: 8},
	{Title: "Total (s)", Width: 10},
	{Title: "Avg CPU %", Width: 10},
	{Title: "Max CPU %", Width: 10},
	{Title: "Avg MB", Width: 9},
	{Title: "Max MB", Width: 9},
}

func newStatsTable() table.Model {
	t := table.New(
		table.WithColumns(statsColumns),
		table.WithFocused(false),
		table.WithHeight(8),
	)
	t.SetStyles(tableStyles(false))
	return t
}

// Init starts the header tick.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeTable()
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(RunningSpinnerFrames)
		return m, m.tickCmd()

	case RealtimeMsg:
		m.window.Push(msg.Sample)
		m.received++
		m.live = true
		return m, nil

	case ProfileMsg:
		m.applyProfile(msg.Data)
		return m, nil

	case ErrorMsg:
		m.pushAlert(msg.Content)
		return m, m.notifyCmd(msg.Content)

	case ResetMsg:
		fresh := NewModel(m.opts)
		if msg.Title != "" {
			fresh.opts.Title = msg.Title
		}
		fresh.width, fresh.height = m.width, m.height
		fresh.help.Width = m.help.Width
		fresh.spinnerFrame = m.spinnerFrame
		fresh.resizeTable()
		return fresh, nil

	case ProcessExitedMsg:
		m.exited = true
		m.exitCode = msg.Code
		m.finished = time.Now()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.FocusTable):
		if m.focus == focusTable {
			m.focus = focusGraphs
			m.table.Blur()
		} else {
			m.focus = focusTable
			m.table.Focus()
		}
		m.table.SetStyles(tableStyles(m.focus == focusTable))
		return m, nil

	case key.Matches(msg, m.keys.ClearAlerts):
		m.alerts = nil
		return m, nil
	}

	if m.focus == focusTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyProfile replaces the history series and the function table wholesale.
func (m *Model) applyProfile(data protocol.ProfilerData) {
	m.cpuHistory, m.memHistory = splitSeries(data.RealTimeData)
	m.series = data.RealTimeData
	m.stats = protocol.SortStats(data.FunctionStats)

	rows := make([]table.Row, len(m.stats))
	for i, s := range m.stats {
		rows[i] = statRow(s)
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.summarized = true
}

func statRow(s protocol.FunctionStat) table.Row {
	return table.Row{
		s.Function,
		humanize.Comma(int64(s.Calls)),
		fmt.Sprintf("%.3f", s.TotalTime),
		FormatFloat(s.AvgCPU),
		FormatFloat(s.MaxCPU),
		FormatFloat(s.AvgMem),
		FormatFloat(s.MaxMem),
	}
}

func (m *Model) pushAlert(text string) {
	m.alerts = append(m.alerts, alert{text: text, at: time.Now()})
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
	}
}

func (m Model) notifyCmd(text string) tea.Cmd {
	if m.opts.Notify == nil {
		return nil
	}
	notify := m.opts.Notify
	return func() tea.Msg {
		notify(protocol.NewAlert(text))
		return nil
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// resizeTable fits the table to the terminal, leaving room for the graphs.
func (m *Model) resizeTable() {
	if m.height > 0 {
		h := m.height / 3
		if h < 4 {
			h = 4
		}
		m.table.SetHeight(h)
	}
	if m.width > 0 {
		m.table.SetWidth(m.width - 4)
	}
}

// Layout returns the layout mode for the current width.
func (m Model) Layout() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard || m.width == 0:
		return LayoutStandard
	default:
		return LayoutMinimal
	}
}

// Live reports whether at least one realtime sample arrived.
func (m Model) Live() bool { return m.live }

// Summarized reports whether at least one profilerData set arrived.
func (m Model) Summarized() bool { return m.summarized }

// State names the dashboard state for display and logs.
func (m Model) State() string {
	switch {
	case m.live && m.summarized:
		return "live+summarized"
	case m.live:
		return "live"
	case m.summarized:
		return "summarized"
	default:
		return "empty"
	}
}

// Samples returns the realtime window oldest first.
func (m Model) Samples() []protocol.RealtimeSample { return m.window.Samples() }

// Current returns the latest realtime sample.
func (m Model) Current() (protocol.RealtimeSample, bool) { return m.window.Latest() }

// CurrentCPU is the CPU value display, empty before the first sample.
func (m Model) CurrentCPU() string {
	s, ok := m.window.Latest()
	if !ok {
		return ""
	}
	return FormatFloat(s.CPU)
}

// CurrentMem is the memory value display, empty before the first sample.
func (m Model) CurrentMem() string {
	s, ok := m.window.Latest()
	if !ok {
		return ""
	}
	return FormatFloat(s.Mem)
}

// Stats returns the displayed function statistics.
func (m Model) Stats() []protocol.FunctionStat { return m.stats }

// LastProfile returns the data a report is built from: the latest
// profilerData series and statistics, or the realtime window when no
// profilerData arrived.
func (m Model) LastProfile() (protocol.ProfilerData, bool) {
	if m.summarized {
		return protocol.ProfilerData{RealTimeData: m.series, FunctionStats: m.stats}, true
	}
	samples := m.window.Samples()
	if len(samples) == 0 {
		return protocol.ProfilerData{}, false
	}
	return protocol.ProfilerData{RealTimeData: samples}, true
}

// TableRows returns the rows currently in the statistics table.
func (m Model) TableRows() []table.Row { return m.table.Rows() }

// History returns the CPU and memory series from the latest profilerData.
func (m Model) History() (cpu, mem []float64) { return m.cpuHistory, m.memHistory }

// Alerts returns the texts of the alerts on screen, oldest first.
func (m Model) Alerts() []string {
	out := make([]string, len(m.alerts))
	for i, a := range m.alerts {
		out[i] = a.text
	}
	return out
}

// Exited reports whether the profiler finished, and its exit code.
func (m Model) Exited() (bool, int) { return m.exited, m.exitCode }

// FormatFloat renders a measurement with one decimal, dropping a trailing ".0".
func FormatFloat(v float64) string {
	return humanize.FtoaWithDigits(v, 1)
}
