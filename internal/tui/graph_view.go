package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rusenback/ssreport/internal/render"
)

var (
	graphTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4BEFE"))
	graphAxisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	seriesStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))
)

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// valueRange finds min and max for scaling, widened when flat
func valueRange(data []float64) (lo, hi float64) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		lo = math.Max(0, hi-10)
		hi = hi + 10
	}
	return lo, hi
}

// renderSparkline creates a compact sparkline of the last width points
func renderSparkline(data []float64, width int) string {
	if len(data) == 0 {
		return strings.Repeat("▁", width)
	}

	start := 0
	if len(data) > width {
		start = len(data) - width
	}
	displayData := data[start:]
	lo, hi := valueRange(displayData)

	var result strings.Builder
	for _, value := range displayData {
		normalized := (value - lo) / (hi - lo)
		idx := clamp(int(normalized*float64(len(sparkChars)-1)), 0, len(sparkChars)-1)
		result.WriteRune(sparkChars[idx])
	}

	// Pad if needed
	for i := len(displayData); i < width; i++ {
		result.WriteString("▁")
	}

	return result.String()
}

// renderSeriesGraph renders one metric column as a multi-line bar graph.
// start is the first timestamp of the report; labels are relative to it.
func renderSeriesGraph(ts []int64, values []float64, metric string, start int64, width, height int) string {
	if len(values) == 0 {
		return "No samples in this column"
	}

	var s strings.Builder
	lo, hi := valueRange(values)

	labels := []string{
		render.FormatValue(metric, hi),
		render.FormatValue(metric, lo+(hi-lo)*0.75),
		render.FormatValue(metric, lo+(hi-lo)*0.5),
		render.FormatValue(metric, lo+(hi-lo)*0.25),
		render.FormatValue(metric, lo),
	}
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, len(l))
	}
	pad := func(l string) string {
		return graphAxisStyle.Render(fmt.Sprintf("%*s ", labelWidth, l))
	}
	blank := strings.Repeat(" ", labelWidth+1)

	for row := height; row >= 0; row-- {
		var line strings.Builder

		isGridLine := row == height || row == height*3/4 || row == height/2 || row == height/4 || row == 0
		switch row {
		case height:
			line.WriteString(pad(labels[0]))
		case height * 3 / 4:
			line.WriteString(pad(labels[1]))
		case height / 2:
			line.WriteString(pad(labels[2]))
		case height / 4:
			line.WriteString(pad(labels[3]))
		case 0:
			line.WriteString(pad(labels[4]))
		default:
			line.WriteString(blank)
		}
		line.WriteString(graphAxisStyle.Render("│"))

		threshold := lo + (float64(row)/float64(height))*(hi-lo)
		for _, v := range values {
			switch {
			case v >= threshold:
				line.WriteString(seriesStyle.Render("█"))
			case isGridLine:
				line.WriteString(graphAxisStyle.Render("·"))
			default:
				line.WriteString(" ")
			}
		}
		s.WriteString(line.String() + "\n")
	}

	s.WriteString(blank + graphAxisStyle.Render("└"+strings.Repeat("─", len(values))) + "\n")
	s.WriteString(blank + renderTimeLabels(ts, start, width-labelWidth-1))
	return s.String()
}

// renderTimeLabels creates time markers along the X-axis, as offsets
// from the start of the recording
func renderTimeLabels(ts []int64, start int64, axisLength int) string {
	if len(ts) == 0 {
		return ""
	}
	first := formatOffset(ts[0] - start)
	last := formatOffset(ts[len(ts)-1] - start)

	axisLength = min(axisLength, len(ts))
	if axisLength < len(first)+len(last)+1 {
		return graphAxisStyle.Render(first + "→" + last)
	}

	numMarkers := 3
	if axisLength >= 50 {
		numMarkers = 5
	}

	var s strings.Builder
	currentCol := 0
	for i := 0; i < numMarkers; i++ {
		position := (i * (axisLength - 1)) / (numMarkers - 1)
		idx := position * (len(ts) - 1) / max(1, axisLength-1)
		label := formatOffset(ts[idx] - start)

		labelStart := position - len(label)/2
		if i == numMarkers-1 {
			labelStart = axisLength - len(label)
		}
		if labelStart < currentCol {
			labelStart = currentCol
		}
		if labelStart > currentCol {
			s.WriteString(strings.Repeat(" ", labelStart-currentCol))
		}
		s.WriteString(label)
		currentCol = labelStart + len(label)
	}

	return graphAxisStyle.Render(s.String())
}

// formatOffset prints a nanosecond offset as a short duration
func formatOffset(ns int64) string {
	d := time.Duration(ns)
	switch {
	case d < time.Second:
		return fmt.Sprintf("+%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("+%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("+%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("+%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
