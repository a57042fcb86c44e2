package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rusenback/ssreport/internal/model"
	"github.com/rusenback/ssreport/internal/render"
	"github.com/rusenback/ssreport/internal/storage"
)

type panel int

const (
	panelColumns panel = iota
	panelGraph
)

// Model represents the TUI application state
type Model struct {
	report  model.Report
	columns []render.ColumnSummary // heaviest first
	total   float64

	cursor       int
	graphOffset  int // points hidden on the right of the graph
	focusedPanel panel
	width        int
	height       int
	message      string

	// storage is optional; without it the report cannot be saved
	storage *storage.Storage
	runID   string
}

// Message types for Bubbletea update loop
type savedMsg struct {
	runID string
	err   error
}

// NewModel creates a viewer over a finished report. runID is empty for a
// report that has not been stored yet.
func NewModel(r model.Report, store *storage.Storage, runID string) Model {
	columns, total := render.Summarize(r.Table)
	return Model{
		report:  r,
		columns: columns,
		total:   total,
		storage: store,
		runID:   runID,
	}
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	return nil
}

// selected returns the summary of the column under the cursor
func (m Model) selected() (render.ColumnSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.columns) {
		return render.ColumnSummary{}, false
	}
	return m.columns[m.cursor], true
}

// series returns the selected column's values and timestamps
func (m Model) series() ([]int64, []float64) {
	col, ok := m.selected()
	if !ok {
		return nil, nil
	}
	return m.report.Table.Series(col.Column)
}
