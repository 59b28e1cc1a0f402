package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/tasksync/internal/mapping"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/scheduler"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/desertthunder/tasksync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// newScheduler builds the scheduler over the given database. Each profile
// gets its own engine so mapping overrides stay per-user.
func (r *Runner) newScheduler(db *repositories.ProfileRepository, taskDB *repositories.TaskRepository, runDB *repositories.RunRepository) *scheduler.Scheduler {
	factory := func(profile *models.SyncProfile, syncType models.SyncType) (tasks.SyncEngine, error) {
		if r.jira == nil || r.trello == nil {
			return nil, fmt.Errorf("%w: remote services not initialized", shared.ErrServiceUnavailable)
		}

		recorder := tasks.NewRecorder(runDB, r.logger)
		return tasks.NewEngine(tasks.EngineOpts{
			Tracker:  r.jira,
			Board:    r.trello,
			Mapper:   mapping.New(profile.FieldMappings(), profile.StatusMappings()),
			Ledger:   taskDB,
			Recorder: recorder,
			Logger:   r.logger,
			UserID:   profile.UserID(),
			SyncType: syncType,
		}), nil
	}

	return scheduler.New(db, factory, r.logger)
}

// ScheduleStart runs the cron scheduler until interrupted.
func (r *Runner) ScheduleStart(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	s := r.newScheduler(
		repositories.NewProfileRepository(db),
		repositories.NewTaskRepository(db),
		repositories.NewRunRepository(db),
	)

	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer s.Stop()

	r.writePlain("Scheduler running. Press Ctrl+C to stop.\n")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	r.logger.Info("shutting down scheduler")
	return nil
}

// ScheduleSweep runs one sweep for a frequency bucket without starting cron.
func (r *Runner) ScheduleSweep(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	frequency := models.Frequency(cmd.String("frequency"))
	if frequency != models.FrequencyHourly && frequency != models.FrequencyDaily {
		return fmt.Errorf("%w: frequency must be hourly or daily, got %q", shared.ErrInvalidArgument, frequency)
	}

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	s := r.newScheduler(
		repositories.NewProfileRepository(db),
		repositories.NewTaskRepository(db),
		repositories.NewRunRepository(db),
	)

	s.RunSweep(ctx, frequency)
	r.writePlain("Sweep complete for %s profiles.\n", frequency)
	return nil
}
