package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty); dot n sets bit n-1.
const brailleBase = '⠀'

// sparklineBlocks give 8 levels of vertical resolution, lowest first.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] of the 2x4 cell to its bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Scale floors: CPU is plotted against at least one full core, memory against
// at least 64 MB so small scripts don't look like they're exploding.
const (
	CPUScaleFloor = 100.0
	MemScaleFloor = 64.0
)

// seriesMax returns the upper bound of the plot: the data maximum, never below floor.
func seriesMax(data []float64, floor float64) float64 {
	top := floor
	for _, v := range data {
		if v > top {
			top = v
		}
	}
	if top <= 0 {
		top = 1
	}
	return top
}

func normalize(val, top float64) float64 {
	n := val / top
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderBrailleGraph plots data as a braille area chart, width characters wide
// and height rows tall. Each character holds two points; shorter series are
// right-aligned so the newest sample is always at the right edge. colorFor
// picks the color of each column from its peak value.
func RenderBrailleGraph(data []float64, width, height int, floor float64, colorFor func(float64) lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	top := seriesMax(data, floor)
	totalDots := height * 4
	targetPoints := width * 2

	points := data
	if len(data) > targetPoints {
		points = resample(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colPeak := make([]float64, width)

	offset := targetPoints - len(points)
	if offset < 0 {
		offset = 0
	}

	for i, val := range points {
		dots := clampInt(int(normalize(val, top)*float64(totalDots)), totalDots)
		// Keep non-zero values visible.
		if dots == 0 && val > 0 {
			dots = 1
		}

		col := (i + offset) / 2
		if col >= width {
			continue
		}
		if val > colPeak[col] {
			colPeak[col] = val
		}
		sub := (i + offset) % 2

		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1 << brailleDots[3-d%4][sub])
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			style := lipgloss.NewStyle().Foreground(colorFor(colPeak[c]))
			b.WriteString(style.Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// RenderSparkline renders a single-row block sparkline of data resampled to width.
func RenderSparkline(data []float64, width int, floor float64, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	top := seriesMax(data, floor)
	levels := len(sparklineBlocks) - 1

	var b strings.Builder
	for _, val := range resample(data, width) {
		b.WriteRune(sparklineBlocks[clampInt(int(normalize(val, top)*float64(levels)), levels)])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// RenderBar renders a horizontal bar for percent, colored by threshold.
func RenderBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	filled := clampInt(int(percent/100*float64(width)), width)
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar)
}

// resample fits data to target points. Downsampling keeps the peak of each
// bucket so spikes survive; upsampling interpolates linearly.
func resample(data []float64, target int) []float64 {
	if len(data) == 0 || target <= 0 {
		return nil
	}
	if len(data) == target {
		return data
	}

	out := make([]float64, target)

	if len(data) == 1 {
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	if len(data) > target {
		bucket := float64(len(data)) / float64(target)
		for i := 0; i < target; i++ {
			start := int(float64(i) * bucket)
			end := int(float64(i+1) * bucket)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			peak := data[start]
			for _, v := range data[start+1 : end] {
				if v > peak {
					peak = v
				}
			}
			out[i] = peak
		}
		return out
	}

	scale := float64(len(data)-1) / float64(target-1)
	for i := range out {
		pos := float64(i) * scale
		idx := int(pos)
		if idx >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = data[idx]*(1-frac) + data[idx+1]*frac
	}
	return out
}
