package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the waterline's key bindings.
type KeyMap struct {
	Up, Down, PageUp, PageDown, Home, End key.Binding

	// Invoice edits on the selected row.
	Toggle, Clear, Paid key.Binding

	// Weight sliders.
	NextWeight, WeightUp, WeightDown key.Binding

	Refresh, Help, Quit, ForceQuit key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns vim-style navigation plus single-letter edits.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       bind("↑/k", "up", "k", "up"),
		Down:     bind("↓/j", "down", "j", "down"),
		PageUp:   bind("PgUp/Ctrl+B", "page up", "pgup", "ctrl+b"),
		PageDown: bind("PgDn/Ctrl+F", "page down", "pgdown", "ctrl+f"),
		Home:     bind("Home/g", "first invoice", "home", "g"),
		End:      bind("End/G", "last invoice", "end", "G"),

		Toggle: bind("Space", "approve/hold", " ", "space", "enter"),
		Clear:  bind("c", "release pin", "c"),
		Paid:   bind("p", "mark paid", "p"),

		NextWeight: bind("Tab", "next weight", "tab"),
		WeightUp:   bind("+", "raise weight", "+", "="),
		WeightDown: bind("-", "lower weight", "-", "_"),

		Refresh:   bind("r", "reload", "r", "ctrl+r"),
		Help:      bind("?", "help", "?"),
		Quit:      bind("q/Esc", "quit", "q", "esc"),
		ForceQuit: bind("Ctrl+C", "force quit", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Clear, k.Paid, k.NextWeight, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.Clear, k.Paid},
		{k.NextWeight, k.WeightUp, k.WeightDown},
		{k.Refresh, k.Help, k.Quit},
	}
}
