// Package scheduler triggers automatic sync passes on a cron schedule.
//
// Two jobs run: an hourly sweep at the top of every hour and a daily sweep
// at 02:00. Each sweep loads the active profiles registered at that
// frequency and runs their configured direction(s) sequentially, so a
// user's ledger only ever has one writer.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/desertthunder/tasksync/internal/tasks"
	"github.com/go-co-op/gocron"
)

const (
	hourlySchedule = "0 * * * *"
	dailySchedule  = "0 2 * * *"
)

// EngineFactory builds a sync engine for one profile. The scheduler passes
// models.SyncAutomatic so runs triggered here are distinguishable from
// manual ones in the history.
type EngineFactory func(profile *models.SyncProfile, syncType models.SyncType) (tasks.SyncEngine, error)

// Scheduler owns the cron jobs for automatic syncs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	profiles  *repositories.ProfileRepository
	factory   EngineFactory
	logger    *log.Logger
}

// New creates a Scheduler that builds engines through the given factory.
func New(profiles *repositories.ProfileRepository, factory EngineFactory, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		profiles:  profiles,
		factory:   factory,
		logger:    logger,
	}
}

// Start registers the hourly and daily jobs and begins running them asynchronously.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Cron(hourlySchedule).Do(func() {
		s.RunSweep(context.Background(), models.FrequencyHourly)
	}); err != nil {
		return err
	}

	if _, err := s.scheduler.Cron(dailySchedule).Do(func() {
		s.RunSweep(context.Background(), models.FrequencyDaily)
	}); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "hourly", hourlySchedule, "daily", dailySchedule)
	return nil
}

// Stop halts all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}

// RunSweep executes one scheduled sweep for all active profiles at the
// given frequency. Profiles run sequentially, and one profile's failure is
// logged without stopping the sweep.
func (s *Scheduler) RunSweep(ctx context.Context, frequency models.Frequency) {
	profiles, err := s.profiles.ListActiveByFrequency(frequency)
	if err != nil {
		s.logger.Error("failed to load profiles for sweep", "frequency", frequency, "error", err)
		return
	}

	s.logger.Info("starting scheduled sweep", "frequency", frequency, "profiles", len(profiles))

	for _, profile := range profiles {
		if err := s.runProfile(ctx, profile); err != nil {
			s.logger.Error("scheduled sync failed", "user", profile.UserID(), "error", err)
			continue
		}
		s.logger.Info("scheduled sync completed", "user", profile.UserID())
	}
}

// runProfile executes a profile's configured direction(s).
// Bidirectional profiles run jira_to_trello first, then trello_to_jira.
func (s *Scheduler) runProfile(ctx context.Context, profile *models.SyncProfile) error {
	if !profile.Active() {
		return fmt.Errorf("%w: %s", shared.ErrProfileInactive, profile.UserID())
	}

	engine, err := s.factory(profile, models.SyncAutomatic)
	if err != nil {
		return err
	}

	for _, direction := range ExpandDirection(profile.Direction()) {
		if _, err := engine.RunDirectional(ctx, direction, nil); err != nil {
			return err
		}
	}
	return nil
}

// ExpandDirection resolves a profile direction into the directional passes it implies.
func ExpandDirection(direction models.Direction) []models.Direction {
	if direction == models.DirectionBidirectional {
		return []models.Direction{models.DirectionJiraToTrello, models.DirectionTrelloToJira}
	}
	return []models.Direction{direction}
}
