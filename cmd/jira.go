package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// JiraIssues lists the issues in the configured project.
func (r *Runner) JiraIssues(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	if r.jira == nil {
		return fmt.Errorf("%w: Jira service not initialized", shared.ErrServiceUnavailable)
	}

	issues, err := r.jira.ListIssues(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(issues, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s Issues (%d)", r.jira.Name(), len(issues)))
	for _, issue := range issues {
		line := fmt.Sprintf("%-12s %s", issue.Key, issue.Summary())
		if status := issue.StatusName(); status != "" {
			line = fmt.Sprintf("%s [%s]", line, status)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// JiraTransitions lists the workflow transitions available on an issue.
func (r *Runner) JiraTransitions(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	if r.jira == nil {
		return fmt.Errorf("%w: Jira service not initialized", shared.ErrServiceUnavailable)
	}

	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: issue key is required", shared.ErrMissingArgument)
	}

	transitions, err := r.jira.Transitions(ctx, key)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Transitions for %s", key))
	for _, transition := range transitions {
		r.writePlain("%-6s %-24s -> %s\n", transition.ID, transition.Name, transition.To.Name)
	}
	return nil
}
