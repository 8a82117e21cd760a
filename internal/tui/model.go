// Package tui implements the interactive waterline: a bubbletea view of the
// allocation where the user pins, clears, and settles invoices.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/engine"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/tui/themes"
)

// Backend plans the run and persists edits to it.
type Backend interface {
	Plan(ctx context.Context) (*engine.Run, error)
	Apply(ctx context.Context, change engine.Change) error
}

// Weight slots in focus order.
const (
	weightImportance = iota
	weightAge
	weightAmount
	weightCount
)

var weightNames = [weightCount]string{"Importance", "Age", "Amount"}

// Model holds the TUI state.
type Model struct {
	theme      themes.Theme
	backend    Backend
	lastError  error
	run        *engine.Run
	money      cli.Formatter
	help       help.Model
	keymap     KeyMap
	status     string
	selectedID string
	config     Config
	changes    int
	cursor     int
	offset     int
	focus      int
	width      int
	height     int
	busy       bool
	ready      bool
	quitting   bool
}

// New creates a model over backend.
func New(backend Backend, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		backend: backend,
		config:  cfg,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		money:   cli.NewFormatter(cfg.Currency),
		help:    h,
		width:   cfg.Width,
		height:  cfg.Height,
		busy:    true,
	}
}

// Init loads the first allocation.
func (m Model) Init() tea.Cmd {
	return m.loadRun()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()

	case runLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.lastError = fmt.Errorf("failed to plan payment run: %w", msg.err)
			return m, nil
		}
		m.run = msg.run
		m.ready = true
		m.restoreSelection()

	case changeAppliedMsg:
		if msg.err != nil {
			m.busy = false
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.changes++
		m.status = describeChange(msg.change)
		return m, m.loadRun()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Edits wait for the previous one to land.
	if m.busy || m.run == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.moveCursor(-m.pageSize())
	case key.Matches(msg, m.keymap.PageDown):
		m.moveCursor(m.pageSize())
	case key.Matches(msg, m.keymap.Home):
		m.moveCursor(-len(m.run.Allocated))
	case key.Matches(msg, m.keymap.End):
		m.moveCursor(len(m.run.Allocated))

	case key.Matches(msg, m.keymap.Toggle):
		if inv, ok := m.selected(); ok {
			return m.submit(engine.Change{Kind: engine.ChangeToggle, InvoiceID: inv.ID})
		}
	case key.Matches(msg, m.keymap.Clear):
		if inv, ok := m.selected(); ok {
			if !inv.IsManualOverride() {
				m.status = fmt.Sprintf("%s is not pinned", inv.ID)
				return m, nil
			}
			return m.submit(engine.Change{Kind: engine.ChangeClearOverride, InvoiceID: inv.ID})
		}
	case key.Matches(msg, m.keymap.Paid):
		if inv, ok := m.selected(); ok {
			return m.submit(engine.Change{Kind: engine.ChangeMarkPaid, InvoiceID: inv.ID})
		}

	case key.Matches(msg, m.keymap.NextWeight):
		m.focus = (m.focus + 1) % weightCount
	case key.Matches(msg, m.keymap.WeightUp):
		return m.nudgeWeight(m.config.WeightStep)
	case key.Matches(msg, m.keymap.WeightDown):
		return m.nudgeWeight(-m.config.WeightStep)

	case key.Matches(msg, m.keymap.Refresh):
		m.busy = true
		return m, m.loadRun()
	}

	return m, nil
}

func (m Model) submit(change engine.Change) (tea.Model, tea.Cmd) {
	m.busy = true
	m.lastError = nil
	return m, m.applyChange(change)
}

// nudgeWeight moves the focused weight by delta, kept on the 0-100 slider.
func (m Model) nudgeWeight(delta float64) (tea.Model, tea.Cmd) {
	weights := m.run.Snapshot.Weights
	slot := weightSlot(&weights, m.focus)
	next := min(max(*slot+delta, 0), 100)
	if next == *slot {
		return m, nil
	}
	*slot = next
	return m.submit(engine.Change{Kind: engine.ChangeWeights, Weights: weights})
}

func weightSlot(w *model.Weights, focus int) *float64 {
	switch focus {
	case weightAge:
		return &w.Age
	case weightAmount:
		return &w.Amount
	default:
		return &w.Importance
	}
}

func describeChange(change engine.Change) string {
	switch change.Kind {
	case engine.ChangeToggle:
		return fmt.Sprintf("Pinned %s", change.InvoiceID)
	case engine.ChangeClearOverride:
		return fmt.Sprintf("Released %s to automatic allocation", change.InvoiceID)
	case engine.ChangeMarkPaid:
		return fmt.Sprintf("Marked %s paid", change.InvoiceID)
	case engine.ChangeWeights:
		w := change.Weights
		return fmt.Sprintf("Weights set to %.0f/%.0f/%.0f", w.Importance, w.Age, w.Amount)
	default:
		return ""
	}
}

func (m *Model) selected() (model.Invoice, bool) {
	if m.run == nil || m.cursor < 0 || m.cursor >= len(m.run.Allocated) {
		return model.Invoice{}, false
	}
	return m.run.Allocated[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	if inv, ok := m.selected(); ok {
		m.selectedID = inv.ID
	}
}

func (m *Model) clampCursor() {
	if m.run == nil {
		return
	}
	n := len(m.run.Allocated)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// restoreSelection keeps the cursor on the same invoice after a reallocation
// reorders the rows. A paid invoice drops out, so the cursor stays put.
func (m *Model) restoreSelection() {
	if m.selectedID != "" {
		for i, inv := range m.run.Allocated {
			if inv.ID == m.selectedID {
				m.cursor = i
				m.clampCursor()
				return
			}
		}
	}
	m.clampCursor()
	if inv, ok := m.selected(); ok {
		m.selectedID = inv.ID
	}
}

// pageSize is the number of invoice rows that fit on screen.
func (m Model) pageSize() int {
	return max(m.height-chromeHeight, 3)
}

// Changes returns how many edits were persisted during the session.
func (m Model) Changes() int {
	return m.changes
}

// Err returns the last error shown to the user.
func (m Model) Err() error {
	return m.lastError
}
