package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	User        UserConfig        `toml:"user"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Sync        SyncConfig        `toml:"sync"`
}

// UserConfig identifies the operator that owns the local sync profile.
type UserConfig struct {
	ID string `toml:"id"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Jira   JiraConfig   `toml:"jira"`
	Trello TrelloConfig `toml:"trello"`
}

// JiraConfig contains Jira API credentials and the project to sync.
type JiraConfig struct {
	Domain     string `toml:"domain"`
	Email      string `toml:"email"`
	APIToken   string `toml:"api_token"`
	ProjectKey string `toml:"project_key"`
}

// TrelloConfig contains Trello API credentials and the board to sync.
type TrelloConfig struct {
	APIKey   string `toml:"api_key"`
	APIToken string `toml:"api_token"`
	BoardID  string `toml:"board_id"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig contains default sync behavior for the local profile.
type SyncConfig struct {
	Direction string  `toml:"direction"`
	Frequency string  `toml:"frequency"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
