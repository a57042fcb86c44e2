package tui

// truncate shortens a string to a maximum length
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// listHeight calculates how many columns fit in the list panel
func (m Model) listHeight() int {
	topHeight := int(float64(m.height) * 0.6)
	// borders, padding, title, totals and header
	visible := topHeight - 12
	if visible < 3 {
		visible = 3
	}
	return visible
}

func (m Model) pageSize() int {
	n := m.listHeight() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// graphWidth is the number of samples the graph panel can show
func (m Model) graphWidth() int {
	leftWidth := int(float64(m.width) * 0.6)
	// panel chrome and y-axis labels
	w := leftWidth - 8 - 12
	if w < 20 {
		w = 20
	}
	return w
}
