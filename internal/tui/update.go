package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.graphOffset = m.clampOffset(m.graphOffset)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "pgup":
			m.moveCursor(-m.pageSize())

		case "pgdown":
			m.moveCursor(m.pageSize())

		case "home":
			m.moveCursor(-len(m.columns))

		case "end":
			m.moveCursor(len(m.columns))

		case "left", "h":
			// Pan the graph towards older samples
			m.graphOffset = m.clampOffset(m.graphOffset + m.graphWidth()/2)

		case "right", "l":
			m.graphOffset = m.clampOffset(m.graphOffset - m.graphWidth()/2)

		case "tab", "shift+tab":
			if m.focusedPanel == panelColumns {
				m.focusedPanel = panelGraph
			} else {
				m.focusedPanel = panelColumns
			}

		case "w":
			switch {
			case m.storage == nil:
				m.message = "No database configured (--db)"
			case m.runID != "":
				m.message = fmt.Sprintf("Already stored as %s", m.runID)
			default:
				m.message = "Saving..."
				return m, saveReport(m.storage, m.report)
			}
		}

	case savedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.runID = msg.runID
			m.message = fmt.Sprintf("Stored as %s", msg.runID)
		}
	}

	return m, nil
}

// moveCursor moves the column cursor by delta and resets the graph window
func (m *Model) moveCursor(delta int) {
	if len(m.columns) == 0 {
		return
	}
	next := clamp(m.cursor+delta, 0, len(m.columns)-1)
	if next != m.cursor {
		m.cursor = next
		m.graphOffset = 0
	}
}

// clampOffset keeps the graph window inside the selected series
func (m Model) clampOffset(offset int) int {
	_, values := m.series()
	return clamp(offset, 0, max(0, len(values)-m.graphWidth()))
}
