package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rusenback/ssreport/internal/model"
	"github.com/rusenback/ssreport/internal/storage"
)

const saveTimeout = 10 * time.Second

// saveReport creates a command that stores the report
func saveReport(store *storage.Storage, r model.Report) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		id, err := store.SaveReport(ctx, r)
		return savedMsg{runID: id, err: err}
	}
}
