package models

import (
	"fmt"
	"time"
)

// SyncTask is a ledger entry linking a Jira issue to its Trello card counterpart.
// It records which remote IDs belong together and when they last converged.
type SyncTask struct {
	sequence     int
	id           string
	userID       string
	jiraID       string
	trelloID     string
	title        string
	status       string
	state        SyncState
	errorMessage string
	lastSyncedAt *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewSyncTask creates a new ledger entry for the given user and remote pair.
// Either remote ID may be empty until its counterpart has been created.
func NewSyncTask(sequence int, userID, jiraID, trelloID, title string) *SyncTask {
	now := time.Now()
	return &SyncTask{
		sequence:  sequence,
		userID:    userID,
		jiraID:    jiraID,
		trelloID:  trelloID,
		title:     title,
		state:     StatePending,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *SyncTask) ID() string                { return t.id }
func (t *SyncTask) Sequence() int             { return t.sequence }
func (t *SyncTask) UserID() string            { return t.userID }
func (t *SyncTask) JiraID() string            { return t.jiraID }
func (t *SyncTask) TrelloID() string          { return t.trelloID }
func (t *SyncTask) Title() string             { return t.title }
func (t *SyncTask) Status() string            { return t.status }
func (t *SyncTask) State() SyncState          { return t.state }
func (t *SyncTask) ErrorMessage() string      { return t.errorMessage }
func (t *SyncTask) LastSyncedAt() *time.Time  { return t.lastSyncedAt }
func (t *SyncTask) CreatedAt() time.Time      { return t.createdAt }
func (t *SyncTask) UpdatedAt() time.Time      { return t.updatedAt }
func (t *SyncTask) DeletedAt() *time.Time     { return t.deletedAt }

func (t *SyncTask) SetID(id string)              { t.id = id }
func (t *SyncTask) SetJiraID(id string)          { t.jiraID = id }
func (t *SyncTask) SetTrelloID(id string)        { t.trelloID = id }
func (t *SyncTask) SetTitle(title string)        { t.title = title }
func (t *SyncTask) SetStatus(status string)      { t.status = status }
func (t *SyncTask) SetState(state SyncState)     { t.state = state }
func (t *SyncTask) SetErrorMessage(msg string)   { t.errorMessage = msg }
func (t *SyncTask) SetLastSyncedAt(ts *time.Time) { t.lastSyncedAt = ts }
func (t *SyncTask) SetCreatedAt(ts time.Time)    { t.createdAt = ts }
func (t *SyncTask) SetUpdatedAt(ts time.Time)    { t.updatedAt = ts }
func (t *SyncTask) SetDeletedAt(ts *time.Time)   { t.deletedAt = ts }

// MarkSynced records a successful pass: state becomes synced, the error is
// cleared and lastSyncedAt advances.
func (t *SyncTask) MarkSynced(at time.Time) {
	t.state = StateSynced
	t.errorMessage = ""
	t.lastSyncedAt = &at
}

// MarkError records a failed pass. Remote IDs already obtained are kept so a
// retry can resolve the existing link.
func (t *SyncTask) MarkError(msg string) {
	t.state = StateError
	t.errorMessage = msg
}

// Validate checks that the ledger entry has an owner and at least one remote ID.
func (t *SyncTask) Validate() error {
	if t.userID == "" {
		return fmt.Errorf("sync task requires a user ID")
	}
	if t.jiraID == "" && t.trelloID == "" {
		return fmt.Errorf("sync task requires at least one remote ID")
	}
	return nil
}
