package tui

import "github.com/charmbracelet/lipgloss"

// View renders the TUI interface
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	return m.renderFourPanelView()
}

// renderFourPanelView renders the four-panel grid layout
func (m Model) renderFourPanelView() string {
	// 60% left, 40% right for columns
	// 60% top, 40% bottom for rows
	leftWidth := int(float64(m.width) * 0.6)
	rightWidth := m.width - leftWidth

	topHeight := int(float64(m.height) * 0.6)
	bottomHeight := m.height - topHeight

	topLeftPanel := m.renderColumnListPanel(leftWidth, topHeight)
	topRightPanel := m.renderStatsPanel(rightWidth, topHeight)
	bottomLeftPanel := m.renderGraphPanel(leftWidth, bottomHeight)
	bottomRightPanel := m.renderInfoPanel(rightWidth, bottomHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, topLeftPanel, topRightPanel)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, bottomLeftPanel, bottomRightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow)
}
