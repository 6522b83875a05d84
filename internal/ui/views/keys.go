package views

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"

	"channelsdb/internal/ui/state"
)

// KeyMap lists the key bindings shown in the help line and the help pager
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Page     key.Binding
	Ends     key.Binding
	Activate key.Binding
	More     key.Binding
	Back     key.Binding
	Search   key.Binding
	Submit   key.Binding
	FullText key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the bindings the input modes implement
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Page:     key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "page")),
		Ends:     key.NewBinding(key.WithKeys("home", "end", "g", "G"), key.WithHelp("gg/G", "top/bottom")),
		Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		More:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace", "h"), key.WithHelp("esc", "back")),
		Search:   key.NewBinding(key.WithKeys("/", "s"), key.WithHelp("/", "search")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "grouped search")),
		FullText: key.NewBinding(key.WithKeys("ctrl+f", "alt+enter"), key.WithHelp("ctrl+f", "full-text search")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Page, k.Ends},
		{k.Activate, k.More, k.Back},
		{k.Search, k.Submit, k.FullText, k.Cancel},
		{k.Help, k.Quit},
	}
}

// contextKeys narrows the short help to what the current screen offers
type contextKeys struct {
	KeyMap
	kind    state.Kind
	editing bool
}

var _ help.KeyMap = contextKeys{}

func (c contextKeys) ShortHelp() []key.Binding {
	if c.editing {
		return []key.Binding{c.Submit, c.FullText, c.Cancel}
	}
	switch c.kind {
	case state.KindSearched:
		return []key.Binding{c.Up, c.Down, c.Activate, c.More, c.Back, c.Search, c.Help, c.Quit}
	case state.KindEntries:
		return []key.Binding{c.Up, c.Down, c.Activate, c.More, c.Back, c.Search, c.Quit}
	default:
		return c.KeyMap.ShortHelp()
	}
}
