package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tasksync/internal/formatter"
	"github.com/desertthunder/tasksync/internal/mapping"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow displays the stored sync profile for the configured user.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	profiles := repositories.NewProfileRepository(db)
	profile, err := profiles.GetByUserID(r.config.User.ID)
	if err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			r.writePlain("No sync profile stored. Run 'tasksync profile set' to create one.\n")
			return nil
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"user_id":         profile.UserID(),
			"direction":       profile.Direction(),
			"frequency":       profile.Frequency(),
			"active":          profile.Active(),
			"field_mappings":  profile.FieldMappings(),
			"status_mappings": profile.StatusMappings(),
		}, true)
	}

	r.writePlainHeader("Sync Profile")
	r.writePlain("User: %s\n", profile.UserID())
	r.writePlain("Direction: %s\n", profile.Direction())
	r.writePlain("Frequency: %s\n", profile.Frequency())
	r.writePlain("Active: %t\n", profile.Active())
	return nil
}

// ProfileSet creates or updates the sync profile from the provided flags.
// Unset flags keep the stored values, or fall back to the config defaults
// when no profile exists yet.
func (r *Runner) ProfileSet(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	direction := models.Direction(cmd.String("direction"))
	frequency := models.Frequency(cmd.String("frequency"))

	profiles := repositories.NewProfileRepository(db)
	profile, err := profiles.GetByUserID(r.config.User.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrProfileNotFound) {
			return err
		}
		profile = models.NewSyncProfile(0, r.config.User.ID,
			models.Direction(r.config.Sync.Direction), models.Frequency(r.config.Sync.Frequency))
	}

	if direction != "" {
		profile.SetDirection(direction)
	}
	if frequency != "" {
		profile.SetFrequency(frequency)
	}

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if err := profiles.Upsert(profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	r.logger.Info("profile saved", "user", profile.UserID(), "direction", profile.Direction(), "frequency", profile.Frequency())
	r.writePlain("Profile saved: %s, %s\n", profile.Direction(), profile.Frequency())
	return nil
}

// ProfileActivate re-enables scheduled syncs for the profile.
func (r *Runner) ProfileActivate(ctx context.Context, cmd *cli.Command) error {
	return r.setProfileActive(cmd, true)
}

// ProfileDeactivate disables scheduled syncs for the profile.
func (r *Runner) ProfileDeactivate(ctx context.Context, cmd *cli.Command) error {
	return r.setProfileActive(cmd, false)
}

func (r *Runner) setProfileActive(cmd *cli.Command, active bool) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	profiles := repositories.NewProfileRepository(db)
	if err := profiles.SetActive(r.config.User.ID, active); err != nil {
		return err
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	r.writePlain("Profile %s for user %s\n", state, r.config.User.ID)
	return nil
}

// ProfileMappings shows the field and status mapping tables the engine will
// use: the stored overrides when present, otherwise the built-in defaults.
func (r *Runner) ProfileMappings(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	profiles := repositories.NewProfileRepository(db)

	if cmd.Bool("reset") {
		if err := profiles.UpdateMappings(r.config.User.ID, nil, nil); err != nil {
			return fmt.Errorf("failed to reset mappings: %w", err)
		}
		r.writePlain("Mapping overrides cleared, defaults restored.\n")
	}

	fields := mapping.DefaultFieldMappings()
	statuses := mapping.DefaultStatusMappings()

	profile, err := profiles.GetByUserID(r.config.User.ID)
	if err == nil {
		if len(profile.FieldMappings()) > 0 {
			fields = profile.FieldMappings()
		}
		if len(profile.StatusMappings()) > 0 {
			statuses = profile.StatusMappings()
		}
	} else if !errors.Is(err, shared.ErrProfileNotFound) {
		return err
	}

	return r.writePlain("%s", formatter.MappingsToText(fields, statuses))
}
