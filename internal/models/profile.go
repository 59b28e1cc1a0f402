package models

import (
	"fmt"
	"time"
)

// SyncProfile holds a user's sync configuration: which way data flows,
// how often it runs, and any mapping overrides. When the mapping slices
// are empty the engine falls back to the built-in defaults.
type SyncProfile struct {
	sequence       int
	id             string
	userID         string
	direction      Direction
	frequency      Frequency
	fieldMappings  []FieldMapping
	statusMappings []StatusMapping
	active         bool
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewSyncProfile creates an active profile for the given user.
func NewSyncProfile(sequence int, userID string, direction Direction, frequency Frequency) *SyncProfile {
	now := time.Now()
	return &SyncProfile{
		sequence:  sequence,
		userID:    userID,
		direction: direction,
		frequency: frequency,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *SyncProfile) ID() string                      { return p.id }
func (p *SyncProfile) Sequence() int                   { return p.sequence }
func (p *SyncProfile) UserID() string                  { return p.userID }
func (p *SyncProfile) Direction() Direction            { return p.direction }
func (p *SyncProfile) Frequency() Frequency            { return p.frequency }
func (p *SyncProfile) FieldMappings() []FieldMapping   { return p.fieldMappings }
func (p *SyncProfile) StatusMappings() []StatusMapping { return p.statusMappings }
func (p *SyncProfile) Active() bool                    { return p.active }
func (p *SyncProfile) CreatedAt() time.Time            { return p.createdAt }
func (p *SyncProfile) UpdatedAt() time.Time            { return p.updatedAt }
func (p *SyncProfile) DeletedAt() *time.Time           { return p.deletedAt }

func (p *SyncProfile) SetID(id string)                       { p.id = id }
func (p *SyncProfile) SetDirection(d Direction)              { p.direction = d }
func (p *SyncProfile) SetFrequency(f Frequency)              { p.frequency = f }
func (p *SyncProfile) SetFieldMappings(m []FieldMapping)     { p.fieldMappings = m }
func (p *SyncProfile) SetStatusMappings(m []StatusMapping)   { p.statusMappings = m }
func (p *SyncProfile) SetActive(active bool)                 { p.active = active }
func (p *SyncProfile) SetCreatedAt(ts time.Time)             { p.createdAt = ts }
func (p *SyncProfile) SetUpdatedAt(ts time.Time)             { p.updatedAt = ts }
func (p *SyncProfile) SetDeletedAt(ts *time.Time)            { p.deletedAt = ts }

// Validate checks that the profile has an owner and valid direction and frequency.
func (p *SyncProfile) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("sync profile requires a user ID")
	}
	if !p.direction.Valid() {
		return fmt.Errorf("sync profile has invalid direction %q", p.direction)
	}
	if !p.frequency.Valid() {
		return fmt.Errorf("sync profile has invalid frequency %q", p.frequency)
	}
	return nil
}
