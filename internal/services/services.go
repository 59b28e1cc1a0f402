// package services defines interfaces for the remote task systems
//
// Jira (REST v3, basic auth), Trello (key/token)
package services

import (
	"context"

	"github.com/desertthunder/tasksync/internal/models"
)

// Tracker defines the interface for the ticket system side of a sync (Jira).
type Tracker interface {
	// ListIssues retrieves the issues in the configured project, most recently updated first.
	ListIssues(ctx context.Context) ([]models.Issue, error)

	// GetIssue retrieves a single issue by key or ID.
	GetIssue(ctx context.Context, key string) (*models.Issue, error)

	// CreateIssue creates an issue from a field patch and returns the created record.
	CreateIssue(ctx context.Context, patch models.IssuePatch) (*models.Issue, error)

	// UpdateIssue applies a field patch to an existing issue.
	UpdateIssue(ctx context.Context, key string, patch models.IssuePatch) error

	// Transitions lists the workflow transitions currently available on an issue.
	Transitions(ctx context.Context, key string) ([]models.Transition, error)

	// TransitionIssue moves an issue through the named workflow transition.
	TransitionIssue(ctx context.Context, key, transitionID string) error

	// Name returns the name of the service (e.g., "Jira")
	Name() string
}

// Board defines the interface for the board system side of a sync (Trello).
type Board interface {
	// ListCards retrieves all open cards on the configured board.
	ListCards(ctx context.Context) ([]models.Card, error)

	// GetCard retrieves a single card by ID.
	GetCard(ctx context.Context, id string) (*models.Card, error)

	// CreateCard creates a card from an attribute patch and returns the created record.
	CreateCard(ctx context.Context, patch models.CardPatch) (*models.Card, error)

	// UpdateCard applies an attribute patch to an existing card.
	UpdateCard(ctx context.Context, id string, patch models.CardPatch) error

	// ListLists retrieves the open lists (columns) on the configured board.
	ListLists(ctx context.Context) ([]models.BoardList, error)

	// ListMembers retrieves the members of the configured board.
	ListMembers(ctx context.Context) ([]models.Member, error)

	// Name returns the name of the service (e.g., "Trello")
	Name() string
}
