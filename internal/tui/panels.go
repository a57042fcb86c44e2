package tui

import (
	"fmt"
	"strings"

	"github.com/rusenback/ssreport/internal/render"
)

func (m Model) box(width, height int, focused bool, content string) string {
	style := panelStyle
	if focused {
		style = focusedPanelStyle
	}
	return style.
		Width(max(0, width-4)).
		Height(max(0, height-4)).
		Render(content)
}

// renderColumnListPanel renders the metric columns, heaviest first
func (m Model) renderColumnListPanel(width, height int) string {
	return m.box(width, height, m.focusedPanel == panelColumns, m.renderListPanelContent(width))
}

func (m Model) renderListPanelContent(width int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s / %s", m.report.Kind, m.report.Metric)) + "\n\n")

	if len(m.columns) == 0 {
		s.WriteString("No columns in this report\n")
		return s.String()
	}

	s.WriteString(fmt.Sprintf("%d columns, %d rows", len(m.columns), len(m.report.Table.Rows)))
	if m.report.Table.Skipped > 0 {
		s.WriteString(fmt.Sprintf(", %d skipped", m.report.Table.Skipped))
	}
	s.WriteString("\n\n")

	colWidth := width - 10
	numWidth := 10
	trendWidth := 12
	nameWidth := max(8, colWidth-3*numWidth-trendWidth-4)

	header := fmt.Sprintf("%-*s %*s %*s %*s %-*s",
		nameWidth, "NAME",
		numWidth, "AVG",
		numWidth, "MAX",
		numWidth, "% TOTAL",
		trendWidth, "TREND")
	s.WriteString(headerStyle.Render(header) + "\n")

	// keep the cursor inside the visible window
	visible := m.listHeight()
	first := 0
	if m.cursor >= visible {
		first = m.cursor - visible + 1
	}

	for i := first; i < len(m.columns) && i < first+visible; i++ {
		c := m.columns[i]
		share := 0.0
		if m.total != 0 {
			share = c.Sum / m.total * 100
		}
		_, values := m.report.Table.Series(c.Column)

		line := fmt.Sprintf("%-*s %*s %*s %*.2f %s",
			nameWidth, truncate(c.Name, nameWidth),
			numWidth, render.FormatValue(m.report.Metric, c.Avg()),
			numWidth, render.FormatValue(m.report.Metric, c.Max),
			numWidth, share,
			renderSparkline(values, trendWidth),
		)
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("> " + line))
		} else {
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}

	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}

	help := "\n[↑/k] up  [↓/j] down  [←/→] pan graph  [tab] focus  [w] save  [q] quit"
	s.WriteString(helpStyle.Render(help))

	return s.String()
}

// renderStatsPanel shows the selected column's summary
func (m Model) renderStatsPanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("📊 Column") + "\n\n")

	col, ok := m.selected()
	if !ok {
		s.WriteString("No column selected")
		return m.box(width, height, false, s.String())
	}

	_, values := m.series()
	lo, hi := 0.0, 0.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	format := func(v float64) string { return render.FormatValue(m.report.Metric, v) }
	rows := [][2]string{
		{"Column", col.Column},
		{"Samples", fmt.Sprintf("%d", col.Count)},
		{"Average", format(col.Avg())},
		{"Minimum", format(lo)},
		{"Maximum", format(hi)},
		{"Sum", format(col.Sum)},
	}
	if len(values) > 0 {
		rows = append(rows, [2]string{"Last", format(values[len(values)-1])})
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(fmt.Sprintf("%-9s", r[0])) + " " + truncate(r[1], max(4, width-20)) + "\n")
	}

	return m.box(width, height, false, s.String())
}

// renderGraphPanel renders the selected column over time
func (m Model) renderGraphPanel(width, height int) string {
	var s strings.Builder

	col, ok := m.selected()
	if !ok {
		s.WriteString("No data")
		return m.box(width, height, m.focusedPanel == panelGraph, s.String())
	}

	ts, values := m.series()
	end := max(0, len(values)-m.graphOffset)
	begin := max(0, end-m.graphWidth())

	title := fmt.Sprintf("📈 %s", col.Name)
	if m.graphOffset > 0 {
		title += fmt.Sprintf(" (%d newer samples hidden)", m.graphOffset)
	}
	s.WriteString(graphTitleStyle.Render(title) + "\n\n")

	var start int64
	if rows := m.report.Table.Rows; len(rows) > 0 {
		start = rows[0].Timestamp
	}
	graphHeight := max(5, height-12)
	s.WriteString(renderSeriesGraph(ts[begin:end], values[begin:end], m.report.Metric, start, width-8, graphHeight))

	return m.box(width, height, m.focusedPanel == panelGraph, s.String())
}

// renderInfoPanel describes the recording the report came from
func (m Model) renderInfoPanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("ℹ Recording") + "\n\n")

	r := m.report
	rows := [][2]string{
		{"Source", r.Source},
		{"Params", r.Params},
		{"CLK_TCK", fmt.Sprintf("%d", r.Config.ClockTicks)},
		{"Page", fmt.Sprintf("%d B", r.Config.PageSize)},
		{"Acq mean", fmt.Sprintf("%.0f ns", r.Acq.Mean)},
		{"Acq σ", fmt.Sprintf("%.0f ns", r.Acq.StdDev)},
		{"Threshold", fmt.Sprintf("%.0f ns", r.Acq.Threshold)},
	}
	if r.AvgAcqMicros > 0 {
		rows = append(rows, [2]string{"Cycle avg", fmt.Sprintf("%.1f µs", r.AvgAcqMicros)})
	}
	if m.runID != "" {
		rows = append(rows, [2]string{"Run", m.runID})
	}
	for _, row := range rows {
		s.WriteString(labelStyle.Render(fmt.Sprintf("%-9s", row[0])) + " " + truncate(row[1], max(4, width-20)) + "\n")
	}

	return m.box(width, height, false, s.String())
}
