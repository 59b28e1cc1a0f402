package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tasksync/internal/services"
	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := ""
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
			configPath = "config.toml"
		}
	}

	var jira services.Tracker
	var trello services.Board

	if svc, err := services.NewJiraService(config.Credentials.Jira, config.Sync.RateLimit); err == nil {
		jira = svc
	} else {
		logger.Debug("Jira service not configured", "error", err)
	}

	if svc, err := services.NewTrelloService(config.Credentials.Trello, config.Sync.RateLimit); err == nil {
		trello = svc
	} else {
		logger.Debug("Trello service not configured", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Jira:       jira,
		Trello:     trello,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "tasksync",
		Usage:    "Sync tasks between Jira & Trello",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
