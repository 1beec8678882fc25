// Package report prints the function statistics of a finished run as a
// Markdown table.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// DefaultWidth is the wrap width when the terminal size is unknown.
const DefaultWidth = 100

// Markdown renders data as a Markdown document: a short summary of the series
// followed by the function table, longest total time first.
func Markdown(title string, data protocol.ProfilerData) string {
	var b strings.Builder

	heading := "Profile"
	if title != "" {
		heading += ": " + filepath.Base(title)
	}
	fmt.Fprintf(&b, "# %s\n\n", heading)

	if n := len(data.RealTimeData); n > 0 {
		peakCPU, peakMem := peaks(data.RealTimeData)
		fmt.Fprintf(&b, "- **Samples:** %s\n", humanize.Comma(int64(n)))
		fmt.Fprintf(&b, "- **Peak CPU:** %s%%\n", humanize.FtoaWithDigits(peakCPU, 1))
		fmt.Fprintf(&b, "- **Peak memory:** %s MB\n\n", humanize.FtoaWithDigits(peakMem, 1))
	}

	if len(data.FunctionStats) == 0 {
		b.WriteString("_No function statistics were recorded._\n")
		return b.String()
	}

	b.WriteString("| Function | Calls | Total (s) | Avg CPU % | Max CPU % | Avg MB | Max MB |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range protocol.SortStats(data.FunctionStats) {
		fmt.Fprintf(&b, "| `%s` | %s | %.3f | %s | %s | %s | %s |\n",
			escapeCell(s.Function),
			humanize.Comma(int64(s.Calls)),
			s.TotalTime,
			humanize.FtoaWithDigits(s.AvgCPU, 1),
			humanize.FtoaWithDigits(s.MaxCPU, 1),
			humanize.FtoaWithDigits(s.AvgMem, 1),
			humanize.FtoaWithDigits(s.MaxMem, 1))
	}
	return b.String()
}

func peaks(samples []protocol.RealtimeSample) (cpu, mem float64) {
	for _, s := range samples {
		if s.CPU > cpu {
			cpu = s.CPU
		}
		if s.Mem > mem {
			mem = s.Mem
		}
	}
	return cpu, mem
}

// escapeCell keeps a function name from breaking the table or its code span.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "`", "'")
}

// Render styles md for the terminal. With styled false the Markdown is
// returned untouched. If glamour fails the raw Markdown is returned with the
// error.
func Render(md string, width int, styled bool) (string, error) {
	if !styled {
		return md, nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, err
	}
	out, err := r.Render(md)
	if err != nil {
		return md, err
	}
	return out, nil
}
