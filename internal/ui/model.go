package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"channelsdb/internal/config"
	"channelsdb/internal/domain"
	"channelsdb/internal/eventbus"
	"channelsdb/internal/source"
	"channelsdb/internal/ui/commands"
	"channelsdb/internal/ui/coordinator"
	"channelsdb/internal/ui/input"
	inputtypes "channelsdb/internal/ui/input/types"
	"channelsdb/internal/ui/services/navigation"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
	"channelsdb/internal/ui/viewmodels"
	"channelsdb/internal/ui/views"
)

// statusTimeout is how long a status message stays on screen
const statusTimeout = 3 * time.Second

// Options configures a Model
type Options struct {
	Config   *config.Config
	Source   source.ResultSource
	Bus      eventbus.EventBus // optional
	Logger   *zap.Logger
	Term     string // searched on start when not empty
	FullText bool   // open Term in full-text mode instead
}

// Model represents the UI state
type Model struct {
	config *config.Config
	logger *zap.Logger
	state  *state.AppState

	help    help.Model
	spinner spinner.Model
	keys    views.KeyMap
	links   domain.Links

	startTerm     string
	startFullText bool

	// Handlers
	coordinator  *coordinator.Coordinator
	executor     *commands.Executor
	inputHandler *input.Handler
	renderer     *views.Renderer
	helpRender   *HelpRenderer
	viewModel    *viewmodels.ViewModel
	pager        *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	executor := commands.NewExecutor()
	svc := search.NewService(search.Options{
		Source:     opts.Source,
		Dispatcher: executor,
		Bus:        opts.Bus,
		Logger:     logger,
		Paging: search.Paging{
			GroupValues:  cfg.Paging.GroupValues,
			GroupEntries: cfg.Paging.GroupEntries,
			FullText:     cfg.Paging.FullText,
		},
	})
	coord := coordinator.NewCoordinator(svc)
	executor.Bind(coord)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		config:        cfg,
		logger:        logger.Named("ui"),
		state:         state.NewAppState(),
		help:          help.New(),
		spinner:       sp,
		keys:          views.DefaultKeyMap(),
		links:         domain.Links{DetailTemplate: cfg.Links.Detail, FigureTemplate: cfg.Links.Figure},
		startTerm:     opts.Term,
		startFullText: opts.FullText,
		coordinator:   coord,
		executor:      executor,
		inputHandler:  input.New(),
		renderer:      views.NewRenderer(),
		helpRender:    NewHelpRenderer(),
		pager:         NewPagerOps(),
	}

	m.viewModel = viewmodels.NewViewModel(m.state, coord, textinput.New())
	m.viewModel.SetHelp(m.help)
	m.viewModel.SetKeys(m.keys)

	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// Coordinator exposes the coordinator for headless callers and tests
func (m *Model) Coordinator() *coordinator.Coordinator {
	return m.coordinator
}

// Close detaches the model from the controller
func (m *Model) Close() {
	m.coordinator.Close()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.startTerm != "" {
		if m.startFullText {
			cmds = append(cmds, m.executor.ExecuteFullText(m.startTerm))
		} else {
			cmds = append(cmds, m.executor.ExecuteSubmit(m.startTerm))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.help.Width = msg.Width
		m.viewModel.SetHelp(m.help)
		m.coordinator.SetViewportHeight(msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.state.PagerActive {
			return m, nil
		}

		ctx := &input.ModelContext{Coordinator: m.coordinator}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}

		m.syncInput()
		return m, tea.Batch(cmds...)

	case commands.CompletionMsg:
		msg.Apply()
		return m, m.executor.Flush()

	case spinner.TickMsg:
		return m.handleNonKeyboardMsg(msg)

	default:
		// Non-keyboard messages for the text input (cursor blink)
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			m.syncInput()
			return m, cmd
		}
		return m.handleNonKeyboardMsg(msg)
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.state.Width == 0 {
		return "Loading..."
	}
	if m.state.PagerActive {
		return ""
	}
	m.viewModel.SetSpinner(m.spinner.View())
	return m.renderer.Render(m.viewModel.BuildViewState())
}

// syncInput copies the search box into the view model
func (m *Model) syncInput() {
	m.state.Editing = m.inputHandler.CurrentMode() == inputtypes.ModeSearch
	if ti := m.inputHandler.TextInput(); ti != nil {
		m.viewModel.UpdateTextInput(*ti)
	}
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.coordinator.Navigation.Navigate(navigation.Direction(a.Direction))
		return nil

	case inputtypes.ChangeModeAction:
		return nil

	case inputtypes.UpdateTextAction:
		m.coordinator.Search.SetTerm(a.Text)
		return nil

	case inputtypes.SubmitTextAction:
		if a.FullText {
			return m.executor.ExecuteFullText(a.Text)
		}
		return m.executor.ExecuteSubmit(a.Text)

	case inputtypes.CancelTextAction:
		return nil

	case inputtypes.ActivateAction:
		return m.executor.ExecuteActivate()

	case inputtypes.LoadMoreAction:
		return m.executor.ExecuteLoadMore()

	case inputtypes.BackAction:
		return m.executor.ExecuteBack()

	case inputtypes.OpenRecordAction:
		rec, ok := m.coordinator.CurrentRecord()
		if !ok {
			return nil
		}
		card := m.renderer.Records().RenderCard(rec, m.links)
		return m.pagerCmd(rec.ID, card)

	case inputtypes.ToggleHelpAction:
		return m.pagerCmd("help", m.helpRender.RenderHelpContent(m.keys))

	case inputtypes.QuitAction:
		return tea.Quit

	default:
		m.logger.Debug("unhandled action", zap.String("type", action.Type()))
		return nil
	}
}

// pagerCmd returns a command that shows content in the ov pager
func (m *Model) pagerCmd(title, content string) tea.Cmd {
	if !m.pager.Available() {
		return func() tea.Msg {
			return pagerMsg{title: title, err: errNoProgram}
		}
	}
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})

		err := m.pager.Show(content)

		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return pagerMsg{title: title, err: err}
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		// The tick loop stops while the pager owns the terminal
		if m.state.PagerActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.String("title", msg.title), zap.Error(msg.err))
			m.state.StatusMessage = fmt.Sprintf("Cannot open %s: %v", msg.title, msg.err)
			return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
		}
		return m, nil

	case pauseRenderingMsg:
		m.state.PagerActive = true
		return m, nil

	case resumeRenderingMsg:
		m.state.PagerActive = false
		return m, m.spinner.Tick

	case clearStatusMsg:
		m.state.StatusMessage = ""
		return m, nil

	default:
		return m, nil
	}
}
