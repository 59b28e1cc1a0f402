package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
)

// RunRepository persists [models.SyncRun] history records.
//
// History is append-only: runs are created once and never updated or
// deleted by the engine.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = "id, sequence, user_id, sync_type, direction, status, tasks_synced, tasks_errored, error_messages, duration_ms, created_at, updated_at, deleted_at"

// scanRun reads one history row into a SyncRun.
func scanRun(row interface{ Scan(...any) error }) (*models.SyncRun, error) {
	var (
		id            string
		sequence      int
		userID        string
		syncType      string
		direction     string
		status        string
		tasksSynced   int
		tasksErrored  int
		errorMessages string
		durationMS    int64
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &userID, &syncType, &direction, &status, &tasksSynced,
		&tasksErrored, &errorMessages, &durationMS, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewSyncRun(sequence, userID, models.SyncType(syncType), models.Direction(direction))
	run.SetID(id)
	run.SetCounts(tasksSynced, tasksErrored)
	run.SetStatus(models.RunStatus(status))
	run.SetDuration(time.Duration(durationMS) * time.Millisecond)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	var messages []string
	if err := json.Unmarshal([]byte(errorMessages), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode error messages: %w", err)
	}
	run.SetErrorMessages(messages)

	return run, nil
}

// Create appends a history record with generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	messages := run.ErrorMessages()
	if messages == nil {
		messages = []string{}
	}
	encoded, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode error messages: %w", err)
	}

	query := `
		INSERT INTO sync_runs (id, sequence, user_id, sync_type, direction, status, tasks_synced, tasks_errored, error_messages, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, run.UserID(), string(run.SyncType()), string(run.Direction()),
		string(run.Status()), run.TasksSynced(), run.TasksErrored(), string(encoded),
		run.Duration().Milliseconds(), run.CreatedAt(), run.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a history record by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_runs WHERE id = ? AND deleted_at IS NULL", runColumns)

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run: %w", err)
	}

	return run, nil
}

// RecentByUser retrieves a user's most recent runs, newest first
func (r *RunRepository) RecentByUser(userID string, limit int) ([]*models.SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT %s FROM sync_runs
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT ?
	`, runColumns)

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// LatestByUser retrieves a user's most recent run, or nil when no runs exist
func (r *RunRepository) LatestByUser(userID string) (*models.SyncRun, error) {
	runs, err := r.RecentByUser(userID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// CountsByStatus returns the number of a user's runs with each derived status
func (r *RunRepository) CountsByStatus(userID string) (map[models.RunStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM sync_runs
		WHERE user_id = ? AND deleted_at IS NULL
		GROUP BY status
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RunStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.RunStatus(status)] = count
	}

	return counts, rows.Err()
}
