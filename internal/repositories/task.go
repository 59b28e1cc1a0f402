package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
)

// TaskRepository implements [models.Repository] for the [models.SyncTask] ledger.
//
// Ledger entries are the durable correlation between a Jira issue and its
// Trello card. The engine never deletes them; Delete exists for operator
// cleanup and soft-deletes only.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new [TaskRepository] with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = "id, sequence, user_id, jira_id, trello_id, title, status, state, error_message, last_synced_at, created_at, updated_at, deleted_at"

// scanTask reads one ledger row into a SyncTask.
func scanTask(row interface{ Scan(...any) error }) (*models.SyncTask, error) {
	var (
		id           string
		sequence     int
		userID       string
		jiraID       string
		trelloID     string
		title        string
		status       string
		state        string
		errorMessage string
		lastSyncedAt sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &userID, &jiraID, &trelloID, &title, &status, &state,
		&errorMessage, &lastSyncedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	task := models.NewSyncTask(sequence, userID, jiraID, trelloID, title)
	task.SetID(id)
	task.SetStatus(status)
	task.SetState(models.SyncState(state))
	task.SetErrorMessage(errorMessage)
	task.SetCreatedAt(createdAt)
	task.SetUpdatedAt(updatedAt)
	if lastSyncedAt.Valid {
		task.SetLastSyncedAt(&lastSyncedAt.Time)
	}
	if deletedAt.Valid {
		task.SetDeletedAt(&deletedAt.Time)
	}

	return task, nil
}

// Create inserts a new ledger entry with generated ID and sequence
func (r *TaskRepository) Create(task *models.SyncTask) error {
	sequence, err := NextSequence(r.db, "sync_tasks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	task.SetID(id)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_tasks (id, sequence, user_id, jira_id, trello_id, title, status, state, error_message, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lastSynced any
	if ts := task.LastSyncedAt(); ts != nil {
		lastSynced = *ts
	}

	_, err = r.db.Exec(query, id, sequence, task.UserID(), task.JiraID(), task.TrelloID(),
		task.Title(), task.Status(), string(task.State()), task.ErrorMessage(), lastSynced,
		task.CreatedAt(), task.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert sync task: %w", err)
	}

	return nil
}

// Get retrieves a ledger entry by ID, excluding soft-deleted entries
func (r *TaskRepository) Get(id string) (*models.SyncTask, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_tasks WHERE id = ? AND deleted_at IS NULL", taskColumns)

	task, err := scanTask(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync task not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync task: %w", err)
	}

	return task, nil
}

// Update modifies an existing ledger entry in the database
func (r *TaskRepository) Update(task *models.SyncTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	task.SetUpdatedAt(now)

	var lastSynced any
	if ts := task.LastSyncedAt(); ts != nil {
		lastSynced = *ts
	}

	query := `
		UPDATE sync_tasks
		SET jira_id = ?, trello_id = ?, title = ?, status = ?, state = ?, error_message = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, task.JiraID(), task.TrelloID(), task.Title(), task.Status(),
		string(task.State()), task.ErrorMessage(), lastSynced, now, task.ID())
	if err != nil {
		return fmt.Errorf("failed to update sync task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync task not found or already deleted: %s", task.ID())
	}

	return nil
}

// Delete soft-deletes a ledger entry by ID
func (r *TaskRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sync_tasks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync task not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves ledger entries matching the given criteria (user_id, state), ordered by sequence
func (r *TaskRepository) List(criteria map[string]any) ([]*models.SyncTask, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_tasks WHERE deleted_at IS NULL", taskColumns)
	var args []any

	var clauses []string
	for _, key := range []string{"user_id", "state"} {
		if value, ok := criteria[key]; ok {
			clauses = append(clauses, fmt.Sprintf("%s = ?", key))
			args = append(args, value)
		}
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.SyncTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// FindByJiraID retrieves a user's ledger entry for a Jira issue, or nil when no link exists
func (r *TaskRepository) FindByJiraID(userID, jiraID string) (*models.SyncTask, error) {
	if jiraID == "" {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM sync_tasks WHERE user_id = ? AND jira_id = ? AND deleted_at IS NULL", taskColumns)

	task, err := scanTask(r.db.QueryRow(query, userID, jiraID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync task by jira id: %w", err)
	}

	return task, nil
}

// FindByTrelloID retrieves a user's ledger entry for a Trello card, or nil when no link exists
func (r *TaskRepository) FindByTrelloID(userID, trelloID string) (*models.SyncTask, error) {
	if trelloID == "" {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM sync_tasks WHERE user_id = ? AND trello_id = ? AND deleted_at IS NULL", taskColumns)

	task, err := scanTask(r.db.QueryRow(query, userID, trelloID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync task by trello id: %w", err)
	}

	return task, nil
}

// Upsert creates the ledger entry when it has no ID yet and updates it otherwise.
func (r *TaskRepository) Upsert(task *models.SyncTask) error {
	if task.ID() == "" {
		return r.Create(task)
	}
	return r.Update(task)
}

// CountByState returns the number of a user's ledger entries in each state
func (r *TaskRepository) CountByState(userID string) (map[models.SyncState]int, error) {
	query := `
		SELECT state, COUNT(*)
		FROM sync_tasks
		WHERE user_id = ? AND deleted_at IS NULL
		GROUP BY state
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SyncState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.SyncState(state)] = count
	}

	return counts, rows.Err()
}
