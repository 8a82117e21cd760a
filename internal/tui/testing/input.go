// Package testing drives bubbletea models synchronously in unit tests.
package testing

import tea "github.com/charmbracelet/bubbletea"

// KeyPress types key as runes.
func KeyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func KeySpace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }
func KeyDown() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyDown} }
func KeyUp() tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyUp} }
func KeyTab() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyTab} }

// maxSteps bounds Drive so a model that keeps emitting commands cannot hang
// a test.
const maxSteps = 1000

// Drive feeds msgs to model in order, running each returned command
// synchronously and feeding its result back before the next input.
// A quit command ends that chain.
func Drive(model tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		queue := []tea.Msg{msg}
		for steps := 0; len(queue) > 0 && steps < maxSteps; steps++ {
			next := queue[0]
			queue = queue[1:]

			var cmd tea.Cmd
			model, cmd = model.Update(next)
			queue = append(queue, runCmd(cmd)...)
		}
	}
	return model
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// IsQuit reports whether cmd, or any command batched inside it, quits.
func IsQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if IsQuit(c) {
				return true
			}
		}
	}
	return false
}
