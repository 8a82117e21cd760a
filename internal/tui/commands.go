package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/payrank/internal/engine"
)

const backendTimeout = 10 * time.Second

// loadRun recomputes the allocation from the backend.
func (m Model) loadRun() tea.Cmd {
	backend, parent := m.backend, m.config.Context
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, backendTimeout)
		defer cancel()

		run, err := backend.Plan(ctx)
		return runLoadedMsg{run: run, err: err}
	}
}

// applyChange persists a change through the backend.
func (m Model) applyChange(change engine.Change) tea.Cmd {
	backend, parent := m.backend, m.config.Context
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, backendTimeout)
		defer cancel()

		return changeAppliedMsg{change: change, err: backend.Apply(ctx, change)}
	}
}
