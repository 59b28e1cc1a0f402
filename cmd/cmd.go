// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// profileCommand manages the local sync profile.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage the sync profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the stored sync profile",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProfileShow,
			},
			{
				Name:  "set",
				Usage: "Create or update the sync profile",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "Sync direction (jira_to_trello, trello_to_jira, bidirectional)",
					},
					&cli.StringFlag{
						Name:    "frequency",
						Aliases: []string{"f"},
						Usage:   "Sync frequency (manual, hourly, daily)",
					},
				},
				Action: r.ProfileSet,
			},
			{
				Name:   "activate",
				Usage:  "Activate the sync profile",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ProfileActivate,
			},
			{
				Name:   "deactivate",
				Usage:  "Deactivate the sync profile (scheduled syncs skip it)",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ProfileDeactivate,
			},
			{
				Name:  "mappings",
				Usage: "Show the active field and status mapping tables",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Reset stored mapping overrides to the defaults",
					},
				},
				Action: r.ProfileMappings,
			},
		},
	}
}

// syncCommand handles manual sync operations.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync tasks between Jira and Trello",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full sync pass",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "Override the profile direction for this run",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "single",
				Usage: "Sync one issue or card by ID",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Issue key or card ID to sync",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "Direction for the single sync",
						Value:   "jira_to_trello",
					},
				},
				Action: r.SyncSingle,
			},
			{
				Name:  "status",
				Usage: "Show last sync, pending work, and recent history",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SyncStatus,
			},
		},
	}
}

// historyCommand inspects recorded sync runs and the task ledger.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect sync history and the task ledger",
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List recent sync runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output as CSV",
					},
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Output as a Markdown table",
					},
				},
				Action: r.HistoryRuns,
			},
			{
				Name:  "tasks",
				Usage: "List task ledger entries",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "state",
						Usage: "Filter by state (pending, synced, error)",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output as CSV",
					},
				},
				Action: r.HistoryTasks,
			},
		},
	}
}

// scheduleCommand handles the cron-driven automatic sync scheduler.
func scheduleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run automatic syncs on a schedule",
		Commands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start the scheduler and block until interrupted",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ScheduleStart,
			},
			{
				Name:  "sweep",
				Usage: "Run one scheduled sweep immediately",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "frequency",
						Aliases:  []string{"f"},
						Usage:    "Frequency bucket to sweep (hourly or daily)",
						Required: true,
					},
				},
				Action: r.ScheduleSweep,
			},
		},
	}
}

// jiraCommand handles direct Jira operations
func jiraCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jira",
		Usage: "Jira project operations",
		Commands: []*cli.Command{
			{
				Name:  "issues",
				Usage: "List issues in the configured project",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.JiraIssues,
			},
			{
				Name:  "transitions",
				Usage: "List available workflow transitions for an issue",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.JiraTransitions,
			},
		},
	}
}

// trelloCommand handles direct Trello operations
func trelloCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "trello",
		Usage: "Trello board operations",
		Commands: []*cli.Command{
			{
				Name:  "cards",
				Usage: "List open cards on the configured board",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TrelloCards,
			},
			{
				Name:   "lists",
				Usage:  "List the lists (columns) on the configured board",
				Flags:  []cli.Flag{configFlag()},
				Action: r.TrelloLists,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive syncing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI to push issues to Trello",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
