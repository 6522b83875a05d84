package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"channelsdb/internal/ui/coordinator"
)

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// CommandContext provides context for command execution
type CommandContext struct {
	Coordinator *coordinator.Coordinator
	Executor    *Executor
}

// SubmitCommand runs a faceted search
type SubmitCommand struct {
	ctx  *CommandContext
	term string
}

// NewSubmitCommand creates a new submit command
func NewSubmitCommand(ctx *CommandContext, term string) *SubmitCommand {
	return &SubmitCommand{
		ctx:  ctx,
		term: term,
	}
}

// Execute sets the term and submits it
func (c *SubmitCommand) Execute() tea.Cmd {
	if c.ctx.Coordinator == nil {
		return nil
	}
	c.ctx.Coordinator.Search.SetTerm(c.term)
	c.ctx.Coordinator.Search.SubmitSearch()
	return c.ctx.Executor.Flush()
}

// FullTextCommand opens full-text mode
type FullTextCommand struct {
	ctx  *CommandContext
	term string
}

// NewFullTextCommand creates a new full-text command
func NewFullTextCommand(ctx *CommandContext, term string) *FullTextCommand {
	return &FullTextCommand{
		ctx:  ctx,
		term: term,
	}
}

// Execute opens full-text mode for the term
func (c *FullTextCommand) Execute() tea.Cmd {
	if c.ctx.Coordinator == nil {
		return nil
	}
	c.ctx.Coordinator.Search.OpenFullText(c.term)
	return c.ctx.Executor.Flush()
}

// ActivateCommand acts on the row under the cursor
type ActivateCommand struct {
	ctx *CommandContext
}

// NewActivateCommand creates a new activate command
func NewActivateCommand(ctx *CommandContext) *ActivateCommand {
	return &ActivateCommand{ctx: ctx}
}

// Execute toggles, selects or pages depending on the row
func (c *ActivateCommand) Execute() tea.Cmd {
	if c.ctx.Coordinator == nil || !c.ctx.Coordinator.Activate() {
		return nil
	}
	return c.ctx.Executor.Flush()
}

// LoadMoreCommand requests the next page of the scope under the cursor
type LoadMoreCommand struct {
	ctx *CommandContext
}

// NewLoadMoreCommand creates a new load more command
func NewLoadMoreCommand(ctx *CommandContext) *LoadMoreCommand {
	return &LoadMoreCommand{ctx: ctx}
}

// Execute requests the page
func (c *LoadMoreCommand) Execute() tea.Cmd {
	if c.ctx.Coordinator == nil || !c.ctx.Coordinator.LoadMore() {
		return nil
	}
	return c.ctx.Executor.Flush()
}

// BackCommand leaves full-text mode or closes what the cursor is in
type BackCommand struct {
	ctx *CommandContext
}

// NewBackCommand creates a new back command
func NewBackCommand(ctx *CommandContext) *BackCommand {
	return &BackCommand{ctx: ctx}
}

// Execute goes back. Nothing is fetched.
func (c *BackCommand) Execute() tea.Cmd {
	if c.ctx.Coordinator != nil {
		c.ctx.Coordinator.Back()
	}
	return nil
}
