package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the interactive waterline until the user quits or ctx is
// canceled. It returns the final model so callers can report what changed.
func Run(ctx context.Context, backend Backend, opts ...Option) (Model, error) {
	if backend == nil {
		return Model{}, fmt.Errorf("backend cannot be nil")
	}

	program := tea.NewProgram(
		New(backend, append([]Option{WithContext(ctx)}, opts...)...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		return Model{}, fmt.Errorf("waterline UI failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Model{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m, nil
}
