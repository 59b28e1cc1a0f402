package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tasksync/internal/formatter"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/scheduler"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/desertthunder/tasksync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs a full manual sync pass. Bidirectional profiles run the
// jira_to_trello pass first, then trello_to_jira.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	direction := models.Direction(cmd.String("direction"))
	if direction == "" {
		direction = models.Direction(r.config.Sync.Direction)
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidDirection, direction)
	}

	engine, err := r.buildEngine(db, models.SyncManual)
	if err != nil {
		return err
	}

	for _, d := range scheduler.ExpandDirection(direction) {
		r.logger.Info("starting sync pass", "direction", d)
		r.writePlain("Starting %s sync...\n\n", d)

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := r.printProgress(progressCh)

		result, err := engine.RunDirectional(ctx, d, progressCh)
		close(progressCh)
		<-done
		if err != nil {
			return err
		}

		r.writePlain("\n")
		r.writePlainHeader("Sync Complete")
		r.writePlain("%s", formatter.ResultToText(result))
	}

	return nil
}

// printProgress drains a progress channel into plain output.
// The returned channel closes once the drainer has flushed every update, so
// callers can join it before writing their summary to the same output.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.FetchLists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SyncItems:
				r.writePlain("   %s\n", update.Message)
			case tasks.RecordHistory:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()
	return done
}

// SyncSingle syncs one record by remote ID. Single syncs write no history.
func (r *Runner) SyncSingle(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	id := cmd.String("id")
	direction := models.Direction(cmd.String("direction"))
	if direction == models.DirectionBidirectional {
		return fmt.Errorf("%w: single syncs need one direction", shared.ErrInvalidDirection)
	}

	engine, err := r.buildEngine(db, models.SyncManual)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progressCh)

	err = engine.RunSingle(ctx, id, direction, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Synced %s (%s)\n", id, direction)
	return nil
}

// SyncStatus shows last sync time, ledger counts, and recent history.
func (r *Runner) SyncStatus(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	engine, err := r.buildEngine(db, models.SyncManual)
	if err != nil {
		return err
	}

	report, err := engine.Status(r.config.User.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"last_sync":     report.LastSync,
			"pending_tasks": report.PendingTasks,
			"errored_tasks": report.ErroredTasks,
			"history_count": len(report.History),
		}, true)
	}

	return r.writePlain("%s", formatter.StatusToText(report))
}
