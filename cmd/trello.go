package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tasksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// TrelloCards lists the open cards on the configured board.
func (r *Runner) TrelloCards(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	if r.trello == nil {
		return fmt.Errorf("%w: Trello service not initialized", shared.ErrServiceUnavailable)
	}

	cards, err := r.trello.ListCards(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(cards, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s Cards (%d)", r.trello.Name(), len(cards)))
	for _, card := range cards {
		line := fmt.Sprintf("%-26s %s", card.ID, card.Name)
		if card.Due != "" {
			line = fmt.Sprintf("%s (due %s)", line, card.Due)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// TrelloLists lists the lists (columns) on the configured board.
func (r *Runner) TrelloLists(ctx context.Context, cmd *cli.Command) error {
	r.reload(cmd)

	if r.trello == nil {
		return fmt.Errorf("%w: Trello service not initialized", shared.ErrServiceUnavailable)
	}

	lists, err := r.trello.ListLists(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Board Lists")
	for _, list := range lists {
		r.writePlain("%-26s %s\n", list.ID, list.Name)
	}
	return nil
}
