package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/desertthunder/tasksync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for pushing issues to Trello.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	if r.jira == nil {
		return fmt.Errorf("%w: Jira service not initialized", shared.ErrServiceUnavailable)
	}
	if r.trello == nil {
		return fmt.Errorf("%w: Trello service not initialized", shared.ErrServiceUnavailable)
	}

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tasksync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.buildEngine(db, models.SyncManual)
	if err != nil {
		return err
	}
	mapper, err := r.buildMapper(db)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.jira, r.trello, engine, mapper)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
