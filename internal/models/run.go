package models

import (
	"fmt"
	"time"
)

// SyncRun records the outcome of a single completed sync attempt.
type SyncRun struct {
	sequence      int
	id            string
	userID        string
	syncType      SyncType
	direction     Direction
	status        RunStatus
	tasksSynced   int
	tasksErrored  int
	errorMessages []string
	duration      time.Duration
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewSyncRun creates a run record for the given user, trigger and direction.
func NewSyncRun(sequence int, userID string, syncType SyncType, direction Direction) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		userID:    userID,
		syncType:  syncType,
		direction: direction,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) UserID() string          { return r.userID }
func (r *SyncRun) SyncType() SyncType      { return r.syncType }
func (r *SyncRun) Direction() Direction    { return r.direction }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) TasksSynced() int        { return r.tasksSynced }
func (r *SyncRun) TasksErrored() int       { return r.tasksErrored }
func (r *SyncRun) ErrorMessages() []string { return r.errorMessages }
func (r *SyncRun) Duration() time.Duration { return r.duration }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }

// StartedAt returns when the recorded pass began, derived from its duration.
func (r *SyncRun) StartedAt() time.Time { return r.createdAt.Add(-r.duration) }

// EndedAt returns when the recorded pass finished.
func (r *SyncRun) EndedAt() time.Time { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *SyncRun) SetID(id string)            { r.id = id }
func (r *SyncRun) SetStatus(s RunStatus)      { r.status = s }
func (r *SyncRun) SetErrorMessages(m []string) { r.errorMessages = m }
func (r *SyncRun) SetDuration(d time.Duration) { r.duration = d }
func (r *SyncRun) SetCreatedAt(ts time.Time)  { r.createdAt = ts }
func (r *SyncRun) SetUpdatedAt(ts time.Time)  { r.updatedAt = ts }
func (r *SyncRun) SetDeletedAt(ts *time.Time) { r.deletedAt = ts }

// SetCounts records the per-item outcomes and derives the run status from them.
func (r *SyncRun) SetCounts(synced, errored int) {
	r.tasksSynced = synced
	r.tasksErrored = errored
	r.status = RunStatusForCounts(synced, errored)
}

// Validate checks that the run has an owner, a direction and a derived status.
func (r *SyncRun) Validate() error {
	if r.userID == "" {
		return fmt.Errorf("sync run requires a user ID")
	}
	if !r.direction.Valid() {
		return fmt.Errorf("sync run has invalid direction %q", r.direction)
	}
	if r.status == "" {
		return fmt.Errorf("sync run requires a status")
	}
	return nil
}
