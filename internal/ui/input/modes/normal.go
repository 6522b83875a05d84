package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"channelsdb/internal/ui/input/types"
)

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case tea.KeyEnter:
		if ctx.OnRecord() {
			return []types.Action{types.OpenRecordAction{}}, true
		}
		if ctx.TotalItems() > 0 {
			return []types.Action{types.ActivateAction{}}, true
		}
		return nil, false

	case tea.KeyEsc, tea.KeyBackspace:
		return []types.Action{types.BackAction{}}, true
	}

	switch msg.String() {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "h":
		return []types.Action{types.BackAction{}}, true

	case " ":
		if ctx.TotalItems() > 0 {
			return []types.Action{types.ActivateAction{}}, true
		}
		return nil, false

	case "o":
		if ctx.OnRecord() {
			return []types.Action{types.OpenRecordAction{}}, true
		}
		return nil, false

	case "m":
		return []types.Action{types.LoadMoreAction{}}, true

	case "/", "s":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch, Data: ctx.Term()}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true

	case "g":
		// gg jumps to the top
		if m.lastKeyWasG && time.Since(m.lastGTime) < 500*time.Millisecond {
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true

	case "G":
		return []types.Action{types.NavigateAction{Direction: "end"}}, true
	}

	m.lastKeyWasG = false
	return nil, false
}
