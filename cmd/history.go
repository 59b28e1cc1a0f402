package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tasksync/internal/formatter"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryRuns lists recent sync runs in plain, Markdown, or CSV form.
func (r *Runner) HistoryRuns(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	runs := repositories.NewRunRepository(db)
	history, err := runs.RecentByUser(r.config.User.ID, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		data, err := formatter.HistoryToCSV(history)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if cmd.Bool("markdown") {
		return r.writePlain("%s", formatter.HistoryToMarkdown(history))
	}

	if len(history) == 0 {
		r.writePlain("No sync runs recorded.\n")
		return nil
	}

	for _, run := range history {
		r.writePlain("%s  %-14s %-9s %-7s synced=%d errored=%d\n",
			run.EndedAt().Format("2006-01-02 15:04:05"), run.Direction(), string(run.SyncType()),
			string(run.Status()), run.TasksSynced(), run.TasksErrored())
	}
	return nil
}

// HistoryTasks lists task ledger entries, optionally filtered by state.
func (r *Runner) HistoryTasks(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	criteria := map[string]any{"user_id": r.config.User.ID}
	if state := cmd.String("state"); state != "" {
		switch models.SyncState(state) {
		case models.StatePending, models.StateSynced, models.StateError:
			criteria["state"] = state
		default:
			return fmt.Errorf("%w: unknown state %q", shared.ErrInvalidArgument, state)
		}
	}

	ledger := repositories.NewTaskRepository(db)
	entries, err := ledger.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		data, err := formatter.LedgerToCSV(entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if len(entries) == 0 {
		r.writePlain("No ledger entries.\n")
		return nil
	}

	for _, entry := range entries {
		line := fmt.Sprintf("%-12s %-26s %-8s %s", entry.JiraID(), entry.TrelloID(), string(entry.State()), entry.Title())
		if msg := entry.ErrorMessage(); msg != "" {
			line = fmt.Sprintf("%s (%s)", line, msg)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}
