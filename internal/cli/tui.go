package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"channelsdb/internal/ui"
)

// runTUI runs the interactive search screen until the user quits
func runTUI(env *environment, term string, fullText bool) error {
	model := ui.NewModel(ui.Options{
		Config:   env.config,
		Source:   env.source,
		Bus:      env.bus,
		Logger:   env.logger,
		Term:     term,
		FullText: fullText,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.SetProgram(p)

	env.logger.Info("starting UI", zap.String("term", term), zap.Bool("full_text", fullText))
	if _, err := p.Run(); err != nil {
		env.logger.Error("error running program", zap.Error(err))
		return fmt.Errorf("error running program: %w", err)
	}
	env.logger.Info("UI exited normally")
	return nil
}
