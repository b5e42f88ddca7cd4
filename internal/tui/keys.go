package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	CardUp     key.Binding
	CardDown   key.Binding
	CardLeft   key.Binding
	CardRight  key.Binding
	ColLeft    key.Binding
	ColRight   key.Binding
	MoveTo     key.Binding
	Add        key.Binding
	Rename     key.Binding
	Delete     key.Binding
	Undo       key.Binding
	Search     key.Binding
	Clear      key.Binding
	Detail     key.Binding
	Copy       key.Binding
	NextColumn key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "card")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "card")),
		CardUp:     key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		CardDown:   key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		CardLeft:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "move left")),
		CardRight:  key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "move right")),
		ColLeft:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "column left")),
		ColRight:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "column right")),
		MoveTo:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move to…")),
		Add:        key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Rename:     key.NewBinding(key.WithKeys("e", "r"), key.WithHelp("e", "rename")),
		Delete:     key.NewBinding(key.WithKeys("x", "d", "delete"), key.WithHelp("x", "delete")),
		Undo:       key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Detail:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "details")),
		Copy:       key.NewBinding(key.WithKeys("y", "c"), key.WithHelp("y", "copy number")),
		NextColumn: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
	}
}

func (k keyMap) shortHelp(compact bool) []key.Binding {
	if compact {
		return []key.Binding{k.NextColumn, k.Up, k.MoveTo, k.Add, k.Undo, k.Search, k.Quit}
	}
	return []key.Binding{k.Left, k.Up, k.CardUp, k.CardLeft, k.MoveTo, k.Add, k.Rename, k.Delete, k.Undo, k.Search, k.Copy, k.Quit}
}
