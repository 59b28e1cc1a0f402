package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
)

// ProfileRepository persists [models.SyncProfile] records.
// Each user has at most one profile (unique user_id).
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new [ProfileRepository] with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = "id, sequence, user_id, direction, frequency, field_mappings, status_mappings, active, created_at, updated_at, deleted_at"

// scanProfile reads one profile row into a SyncProfile.
func scanProfile(row interface{ Scan(...any) error }) (*models.SyncProfile, error) {
	var (
		id             string
		sequence       int
		userID         string
		direction      string
		frequency      string
		fieldMappings  string
		statusMappings string
		active         bool
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &userID, &direction, &frequency, &fieldMappings,
		&statusMappings, &active, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	profile := models.NewSyncProfile(sequence, userID, models.Direction(direction), models.Frequency(frequency))
	profile.SetID(id)
	profile.SetActive(active)
	profile.SetCreatedAt(createdAt)
	profile.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		profile.SetDeletedAt(&deletedAt.Time)
	}

	var fields []models.FieldMapping
	if err := json.Unmarshal([]byte(fieldMappings), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode field mappings: %w", err)
	}
	profile.SetFieldMappings(fields)

	var statuses []models.StatusMapping
	if err := json.Unmarshal([]byte(statusMappings), &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode status mappings: %w", err)
	}
	profile.SetStatusMappings(statuses)

	return profile, nil
}

// encodeMappings renders mapping slices as JSON for storage, with nil slices as empty lists.
func encodeMappings(profile *models.SyncProfile) (string, string, error) {
	fields := profile.FieldMappings()
	if fields == nil {
		fields = []models.FieldMapping{}
	}
	encodedFields, err := json.Marshal(fields)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode field mappings: %w", err)
	}

	statuses := profile.StatusMappings()
	if statuses == nil {
		statuses = []models.StatusMapping{}
	}
	encodedStatuses, err := json.Marshal(statuses)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode status mappings: %w", err)
	}

	return string(encodedFields), string(encodedStatuses), nil
}

// Create inserts a new profile with generated ID and sequence
func (r *ProfileRepository) Create(profile *models.SyncProfile) error {
	sequence, err := NextSequence(r.db, "sync_profiles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	profile.SetID(id)

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fields, statuses, err := encodeMappings(profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_profiles (id, sequence, user_id, direction, frequency, field_mappings, status_mappings, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, profile.UserID(), string(profile.Direction()),
		string(profile.Frequency()), fields, statuses, profile.Active(),
		profile.CreatedAt(), profile.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert sync profile: %w", err)
	}

	return nil
}

// Get retrieves a profile by ID, excluding soft-deleted profiles
func (r *ProfileRepository) Get(id string) (*models.SyncProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_profiles WHERE id = ? AND deleted_at IS NULL", profileColumns)

	profile, err := scanProfile(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync profile: %w", err)
	}

	return profile, nil
}

// GetByUserID retrieves a user's profile
func (r *ProfileRepository) GetByUserID(userID string) (*models.SyncProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_profiles WHERE user_id = ? AND deleted_at IS NULL", profileColumns)

	profile, err := scanProfile(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", shared.ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync profile: %w", err)
	}

	return profile, nil
}

// Update modifies an existing profile in the database
func (r *ProfileRepository) Update(profile *models.SyncProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	profile.SetUpdatedAt(now)

	fields, statuses, err := encodeMappings(profile)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_profiles
		SET direction = ?, frequency = ?, field_mappings = ?, status_mappings = ?, active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(profile.Direction()), string(profile.Frequency()),
		fields, statuses, profile.Active(), now, profile.ID())
	if err != nil {
		return fmt.Errorf("failed to update sync profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProfileNotFound, profile.ID())
	}

	return nil
}

// Delete soft-deletes a profile by ID
func (r *ProfileRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sync_profiles
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}

	return nil
}

// List retrieves profiles matching the given criteria (user_id, frequency, active)
func (r *ProfileRepository) List(criteria map[string]any) ([]*models.SyncProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM sync_profiles WHERE deleted_at IS NULL", profileColumns)
	var args []any

	for _, key := range []string{"user_id", "frequency", "active"} {
		if value, ok := criteria[key]; ok {
			query += fmt.Sprintf(" AND %s = ?", key)
			args = append(args, value)
		}
	}
	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.SyncProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// ListActiveByFrequency retrieves the active profiles scheduled at the given frequency
func (r *ProfileRepository) ListActiveByFrequency(frequency models.Frequency) ([]*models.SyncProfile, error) {
	return r.List(map[string]any{"frequency": string(frequency), "active": true})
}

// Upsert creates a user's profile or replaces its settings wholesale
func (r *ProfileRepository) Upsert(profile *models.SyncProfile) error {
	existing, err := r.GetByUserID(profile.UserID())
	if err != nil {
		return r.Create(profile)
	}

	profile.SetID(existing.ID())
	profile.SetCreatedAt(existing.CreatedAt())
	return r.Update(profile)
}

// UpdateMappings replaces a user's mapping lists without touching other settings
func (r *ProfileRepository) UpdateMappings(userID string, fields []models.FieldMapping, statuses []models.StatusMapping) error {
	profile, err := r.GetByUserID(userID)
	if err != nil {
		return err
	}

	profile.SetFieldMappings(fields)
	profile.SetStatusMappings(statuses)
	return r.Update(profile)
}

// SetActive toggles a user's profile without deleting it
func (r *ProfileRepository) SetActive(userID string, active bool) error {
	profile, err := r.GetByUserID(userID)
	if err != nil {
		return err
	}

	profile.SetActive(active)
	return r.Update(profile)
}
