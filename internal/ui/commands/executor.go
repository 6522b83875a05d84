package commands

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"channelsdb/internal/ui/coordinator"
)

// CompletionMsg carries a finished fetch back into the Bubble Tea loop, where
// Apply commits it to the controller
type CompletionMsg struct {
	apply func()
}

// Apply commits the completion
func (m CompletionMsg) Apply() {
	if m.apply != nil {
		m.apply()
	}
}

// Executor is the controller's dispatcher inside the TUI. Fetches queued by
// an intent become tea.Cmds; their completions come back as CompletionMsg so
// they are applied from Update, one at a time.
type Executor struct {
	mu      sync.Mutex
	pending []tea.Cmd
	ctx     *CommandContext
}

// NewExecutor creates a new command executor
func NewExecutor() *Executor {
	e := &Executor{}
	e.ctx = &CommandContext{Executor: e}
	return e
}

// Bind attaches the coordinator commands operate on
func (e *Executor) Bind(c *coordinator.Coordinator) {
	e.ctx.Coordinator = c
}

// Dispatch implements search.Dispatcher
func (e *Executor) Dispatch(work func() func()) {
	cmd := func() tea.Msg {
		return CompletionMsg{apply: work()}
	}
	e.mu.Lock()
	e.pending = append(e.pending, cmd)
	e.mu.Unlock()
}

// Flush returns the queued fetches as one command
func (e *Executor) Flush() tea.Cmd {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return tea.Batch(pending...)
}

// Pending returns the number of queued fetches
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// ExecuteSubmit creates and executes a faceted search command
func (e *Executor) ExecuteSubmit(term string) tea.Cmd {
	return NewSubmitCommand(e.ctx, term).Execute()
}

// ExecuteFullText creates and executes a full-text command
func (e *Executor) ExecuteFullText(term string) tea.Cmd {
	return NewFullTextCommand(e.ctx, term).Execute()
}

// ExecuteActivate creates and executes an activate command
func (e *Executor) ExecuteActivate() tea.Cmd {
	return NewActivateCommand(e.ctx).Execute()
}

// ExecuteLoadMore creates and executes a load more command
func (e *Executor) ExecuteLoadMore() tea.Cmd {
	return NewLoadMoreCommand(e.ctx).Execute()
}

// ExecuteBack creates and executes a back command
func (e *Executor) ExecuteBack() tea.Cmd {
	return NewBackCommand(e.ctx).Execute()
}
