package tui

import "github.com/Veraticus/payrank/internal/engine"

// runLoadedMsg carries a fresh allocation.
type runLoadedMsg struct {
	run *engine.Run
	err error
}

// changeAppliedMsg reports the outcome of persisting a change.
type changeAppliedMsg struct {
	err    error
	change engine.Change
}
