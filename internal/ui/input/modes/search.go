package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"channelsdb/internal/ui/input/types"
)

// SearchMode edits the search term. Enter runs a faceted search, alt+enter
// or ctrl+f a full-text search.
type SearchMode struct {
	TextInputMode
}

func NewSearchMode(ti *textinput.Model) *SearchMode {
	return &SearchMode{
		TextInputMode: NewTextInputMode(types.ModeSearch, "search", "Search: ", ti),
	}
}

func (m *SearchMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.String() == "ctrl+f" || (msg.Alt && msg.Type == tea.KeyEnter) {
		return []types.Action{
			types.SubmitTextAction{Text: m.value(), FullText: true},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}
	return m.TextInputMode.HandleKey(msg, ctx)
}
