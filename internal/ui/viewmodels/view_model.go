package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"channelsdb/internal/ui/coordinator"
	"channelsdb/internal/ui/state"
	"channelsdb/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state       *state.AppState
	coordinator *coordinator.Coordinator
	help        help.Model
	keys        views.KeyMap
	spinner     string
	prompt      string
	textInput   textinput.Model
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, c *coordinator.Coordinator, textInput textinput.Model) *ViewModel {
	return &ViewModel{
		state:       appState,
		coordinator: c,
		help:        help.New(),
		keys:        views.DefaultKeyMap(),
		prompt:      "Search: ",
		textInput:   textInput,
	}
}

// SetHelp sets the help model
func (vm *ViewModel) SetHelp(helpModel help.Model) {
	vm.help = helpModel
}

// SetKeys sets the key bindings shown in the help line
func (vm *ViewModel) SetKeys(keys views.KeyMap) {
	vm.keys = keys
}

// SetSpinner sets the current spinner frame
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// SetPrompt sets the label in front of the search box
func (vm *ViewModel) SetPrompt(prompt string) {
	vm.prompt = prompt
}

// UpdateTextInput updates the text input model
func (vm *ViewModel) UpdateTextInput(textInput textinput.Model) {
	vm.textInput = textInput
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState() views.ViewState {
	nav := vm.coordinator.Navigation
	vs := views.ViewState{
		Width:          vm.state.Width,
		Height:         vm.state.Height,
		Snapshot:       vm.coordinator.Snapshot(),
		Rows:           vm.coordinator.Query.Rows(),
		SelectedIndex:  nav.GetCursor(),
		ViewportOffset: nav.GetViewportOffset(),
		ViewportHeight: nav.GetViewportHeight(),
		Editing:        vm.state.Editing,
		Spinner:        vm.spinner,
		StatusMessage:  vm.state.StatusMessage,
		HelpModel:      vm.help,
		Keys:           vm.keys,
	}
	if vm.state.Editing {
		vs.TextInput = vm.prompt + vm.textInput.View()
	}
	return vs
}
