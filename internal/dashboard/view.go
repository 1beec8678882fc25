package dashboard

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// defaultWidth is used before the first WindowSizeMsg.
const defaultWidth = 100

// visibleAlerts is how many alerts the banner shows.
const visibleAlerts = 3

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	sections := []string{
		m.renderHeader(width),
		m.renderCurrent(width),
	}
	if g := m.renderRealtime(width); g != "" {
		sections = append(sections, g)
	}
	if h := m.renderHistory(width); h != "" {
		sections = append(sections, h)
	}
	sections = append(sections, m.renderTable(width))
	if a := m.renderAlerts(width); a != "" {
		sections = append(sections, a)
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader shows the target file and the run status.
func (m Model) renderHeader(width int) string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("profdash")

	target := m.opts.Title
	if target != "" {
		target = filepath.Base(target)
	}

	var status string
	switch {
	case !m.exited:
		elapsed := time.Since(m.started).Truncate(time.Second)
		status = StatusRunningStyle.Render(fmt.Sprintf("%s running %s", RunningSpinnerFrames[m.spinnerFrame], elapsed))
	case m.exitCode == 0:
		status = StatusDoneStyle.Render(fmt.Sprintf("✓ finished in %s", m.finished.Sub(m.started).Truncate(100*time.Millisecond)))
	default:
		status = StatusFailedStyle.Render(fmt.Sprintf("✗ exited with code %d", m.exitCode))
	}

	info := LabelStyle.Render(fmt.Sprintf(" | %s | %s | ", target, m.State()))
	return lipgloss.NewStyle().MaxWidth(width).Render(HeaderStyle.Render(title + info + status))
}

// renderCurrent shows the three current-value displays.
func (m Model) renderCurrent(width int) string {
	cpu, mem, fn := "-", "-", "-"
	var cpuVal float64
	if s, ok := m.window.Latest(); ok {
		cpuVal = s.CPU
		cpu = FormatFloat(s.CPU) + "%"
		mem = FormatFloat(s.Mem) + " MB"
		if s.Functions != "" {
			fn = s.Functions
		}
	}

	cpuLine := ValueStyle.Foreground(MetricColor(cpuVal)).Render(cpu)
	if m.Layout() != LayoutMinimal {
		cpuLine += " " + RenderBar(10, cpuVal)
	}

	cards := []string{
		CardStyle.Render(LabelStyle.Render("CPU") + "\n" + cpuLine),
		CardStyle.Render(LabelStyle.Render("Memory") + "\n" + ValueStyle.Render(mem)),
	}

	// The function card takes what's left of the row.
	used := lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	fnWidth := width - used - 4
	if fnWidth < 12 {
		fnWidth = 12
	}
	fnText := lipgloss.NewStyle().MaxWidth(fnWidth).Render(fn)
	cards = append(cards, CardStyle.Render(LabelStyle.Render("Active function")+"\n"+ValueStyle.Render(fnText)))

	if m.Layout() == LayoutMinimal {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderRealtime plots the live window.
func (m Model) renderRealtime(width int) string {
	if m.window.Len() == 0 {
		return Section("Realtime", "waiting for samples", MutedStyle.Render("no data yet"), width)
	}

	value := fmt.Sprintf("%d/%d samples", m.window.Len(), m.window.Cap())
	cpu, mem := m.window.CPU(), m.window.Mem()
	inner := width - 4

	switch m.Layout() {
	case LayoutMinimal:
		body := LabelStyle.Render("CPU ") + RenderSparkline(cpu, inner-4, CPUScaleFloor, ColorCPU) + "\n" +
			LabelStyle.Render("MEM ") + RenderSparkline(mem, inner-4, MemScaleFloor, ColorMem)
		return Section("Realtime", value, body, width)

	case LayoutWide:
		half := (width - 1) / 2
		left := Section("CPU %", FormatFloat(cpu[len(cpu)-1]),
			RenderBrailleGraph(cpu, half-4, 4, CPUScaleFloor, MetricColor), half)
		right := Section("Memory MB", FormatFloat(mem[len(mem)-1]),
			RenderBrailleGraph(mem, width-half-5, 4, MemScaleFloor, memColor), width-half-1)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	default:
		body := LabelStyle.Render("CPU") + "\n" +
			RenderBrailleGraph(cpu, inner, 3, CPUScaleFloor, MetricColor) + "\n" +
			LabelStyle.Render("Memory") + "\n" +
			RenderBrailleGraph(mem, inner, 3, MemScaleFloor, memColor)
		return Section("Realtime", value, body, width)
	}
}

func memColor(float64) lipgloss.Color { return ColorMem }

// renderHistory shows the full-run series from the latest profilerData.
func (m Model) renderHistory(width int) string {
	if !m.summarized || len(m.cpuHistory) == 0 {
		return ""
	}

	spark := width - 14
	if spark < 8 {
		spark = 8
	}
	body := LabelStyle.Render("CPU    ") + RenderSparkline(m.cpuHistory, spark, CPUScaleFloor, ColorCPU) + "\n" +
		LabelStyle.Render("Memory ") + RenderSparkline(m.memHistory, spark, MemScaleFloor, ColorMem)
	return Section("History", fmt.Sprintf("%d points", len(m.cpuHistory)), body, width)
}

// renderTable shows the function statistics.
func (m Model) renderTable(width int) string {
	if !m.summarized {
		return Section("Functions", "", MutedStyle.Render("statistics appear when the run completes"), width)
	}
	value := fmt.Sprintf("%d functions", len(m.stats))
	if m.focus == focusTable {
		value += " (focused)"
	}
	return Section("Functions", value, m.table.View(), width)
}

// renderAlerts shows the newest alerts without touching chart or table state.
func (m Model) renderAlerts(width int) string {
	if len(m.alerts) == 0 {
		return ""
	}

	shown := m.alerts
	if len(shown) > visibleAlerts {
		shown = shown[len(shown)-visibleAlerts:]
	}

	var lines []string
	for _, a := range shown {
		text := strings.TrimSpace(a.text)
		if i := strings.LastIndexByte(text, '\n'); i >= 0 {
			// Tracebacks end with the useful line.
			text = strings.TrimSpace(text[i+1:])
		}
		lines = append(lines, AlertStyle.Render("✗ "+a.at.Format("15:04:05")+" "+text))
	}
	if hidden := len(m.alerts) - len(shown); hidden > 0 {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("  +%d earlier", hidden)))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	footer := m.help.View(m.keys)
	if m.help.ShowAll && m.opts.Command != "" {
		footer += "\n" + MutedStyle.Render("$ "+m.opts.Command)
	}
	return FooterStyle.Render(footer)
}
