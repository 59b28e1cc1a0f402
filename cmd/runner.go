package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tasksync/internal/mapping"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/services"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/desertthunder/tasksync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	jira       services.Tracker
	trello     services.Board
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Jira       services.Tracker
	Trello     services.Board
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		jira:       opts.Jira,
		trello:     opts.Trello,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, profileCommand, syncCommand, historyCommand, scheduleCommand, jiraCommand, trelloCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reload re-reads the config file named by the command's --config flag.
// Missing files are ignored so commands still run against the defaults.
func (r *Runner) reload(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if config, err := shared.LoadConfig(path); err == nil {
		r.config = config
		r.configPath = path
	} else {
		r.logger.Warn("failed to load config, keeping current settings", "path", path, "error", err)
	}
}

// database returns an open database connection and a release function.
// An injected connection (tests) is reused and never closed by the release.
func (r *Runner) database() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return db, func() { db.Close() }, nil
}

// buildEngine assembles a sync engine for the configured user. The mapper
// uses the stored profile's mapping overrides when a profile exists.
func (r *Runner) buildEngine(db *sql.DB, syncType models.SyncType) (tasks.SyncEngine, error) {
	if r.jira == nil {
		return nil, fmt.Errorf("%w: Jira service not initialized", shared.ErrServiceUnavailable)
	}
	if r.trello == nil {
		return nil, fmt.Errorf("%w: Trello service not initialized", shared.ErrServiceUnavailable)
	}

	mapper, err := r.buildMapper(db)
	if err != nil {
		return nil, err
	}

	recorder := tasks.NewRecorder(repositories.NewRunRepository(db), r.logger)

	return tasks.NewEngine(tasks.EngineOpts{
		Tracker:  r.jira,
		Board:    r.trello,
		Mapper:   mapper,
		Ledger:   repositories.NewTaskRepository(db),
		Recorder: recorder,
		Logger:   r.logger,
		UserID:   r.config.User.ID,
		SyncType: syncType,
	}), nil
}

// buildMapper returns the configured user's mapper, falling back to the
// default tables when no profile is stored.
func (r *Runner) buildMapper(db *sql.DB) (*mapping.Mapper, error) {
	profiles := repositories.NewProfileRepository(db)

	profile, err := profiles.GetByUserID(r.config.User.ID)
	if err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			return mapping.New(nil, nil), nil
		}
		return nil, err
	}

	return mapping.New(profile.FieldMappings(), profile.StatusMappings()), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
