package tasks

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/shared"
)

// Recorder appends history records for completed sync passes.
// History is append-only; the recorder never updates or deletes runs.
type Recorder struct {
	runs   *repositories.RunRepository
	logger *log.Logger
}

// NewRecorder creates a Recorder backed by the given run repository.
func NewRecorder(runs *repositories.RunRepository, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Recorder{runs: runs, logger: logger}
}

// Record appends one history record for a completed pass.
// The run status derives from the item counts: failed when every attempted
// item errored, success when none did, partial otherwise.
func (r *Recorder) Record(userID string, syncType models.SyncType, direction models.Direction, result *SyncResult) (*models.SyncRun, error) {
	run := models.NewSyncRun(0, userID, syncType, direction)
	run.SetCounts(result.TasksSynced, result.TasksErrored)
	run.SetErrorMessages(result.ErrorMessages)
	run.SetDuration(result.Duration)

	if err := r.runs.Create(run); err != nil {
		return nil, err
	}

	r.logger.Info("recorded sync run",
		"user", userID, "direction", direction, "status", run.Status(),
		"synced", run.TasksSynced(), "errored", run.TasksErrored())
	return run, nil
}

// Recent returns a user's most recent runs, newest first.
func (r *Recorder) Recent(userID string, limit int) ([]*models.SyncRun, error) {
	return r.runs.RecentByUser(userID, limit)
}

// Latest returns a user's most recent run, or nil when no runs exist.
func (r *Recorder) Latest(userID string) (*models.SyncRun, error) {
	return r.runs.LatestByUser(userID)
}

// Counts returns the number of a user's runs with each derived status.
func (r *Recorder) Counts(userID string) (map[models.RunStatus]int, error) {
	return r.runs.CountsByStatus(userID)
}
