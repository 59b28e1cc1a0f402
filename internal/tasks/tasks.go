// package tasks implements sync passes between the ticket system and the board system.
//
// The core abstraction is SyncEngine, which orchestrates directional sync passes,
// single-record syncs, and status reads. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tasksync/internal/mapping"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/services"
	"github.com/desertthunder/tasksync/internal/shared"
)

// SyncResult contains the aggregated outcome of a directional sync pass.
type SyncResult struct {
	Direction     models.Direction // Direction the pass moved data
	Success       bool             // True when no item errored
	TasksSynced   int              // Items written successfully
	TasksErrored  int              // Items that failed
	ErrorMessages []string         // One message per failed item
	Duration      time.Duration    // Wall-clock time of the pass
}

// ItemResult represents the outcome of syncing a single record.
type ItemResult struct {
	Ref string // Issue key or card ID
	Err error  // Error if the item failed
}

// StatusReport summarizes a user's sync state for display.
type StatusReport struct {
	LastSync     *time.Time        // When the most recent pass finished, nil if never
	PendingTasks int               // Ledger entries not yet synced
	ErroredTasks int               // Ledger entries whose last pass failed
	History      []*models.SyncRun // Most recent runs, newest first
}

// SyncEngine defines operations for syncing tasks between the two systems.
type SyncEngine interface {
	// RunDirectional performs a full pass in one direction: bulk fetch, per-item
	// translate and write, then one history record.
	RunDirectional(ctx context.Context, direction models.Direction, progress chan<- ProgressUpdate) (*SyncResult, error)

	// RunSingle syncs one record by remote ID without aggregation or history.
	RunSingle(ctx context.Context, id string, direction models.Direction, progress chan<- ProgressUpdate) error

	// Status reports the last run, live ledger counts, and recent history.
	Status(userID string) (*StatusReport, error)
}

// Engine implements SyncEngine for one user's profile.
// Contains dependencies on both remote services, the mapper, the ledger, and the history recorder.
type Engine struct {
	tracker  services.Tracker
	board    services.Board
	mapper   *mapping.Mapper
	ledger   *repositories.TaskRepository
	recorder *Recorder
	logger   *log.Logger
	userID   string
	syncType models.SyncType
}

// EngineOpts bundles the dependencies for NewEngine.
type EngineOpts struct {
	Tracker  services.Tracker
	Board    services.Board
	Mapper   *mapping.Mapper
	Ledger   *repositories.TaskRepository
	Recorder *Recorder
	Logger   *log.Logger
	UserID   string
	SyncType models.SyncType
}

// NewEngine creates an Engine with the provided dependencies.
// A nil mapper falls back to the default mapping tables; a nil recorder
// disables history writes (used by single-record syncs and tests).
func NewEngine(opts EngineOpts) *Engine {
	if opts.Mapper == nil {
		opts.Mapper = mapping.New(nil, nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.SyncType == "" {
		opts.SyncType = models.SyncManual
	}

	return &Engine{
		tracker:  opts.Tracker,
		board:    opts.Board,
		mapper:   opts.Mapper,
		ledger:   opts.Ledger,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		userID:   opts.UserID,
		syncType: opts.SyncType,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// summarize folds per-item outcomes into counts and messages.
func summarize(results []ItemResult) (synced, errored int, messages []string) {
	for _, r := range results {
		if r.Err == nil {
			synced++
			continue
		}
		errored++
		messages = append(messages, fmt.Sprintf("%s: %v", r.Ref, r.Err))
	}
	return synced, errored, messages
}

// RunDirectional performs a full sync pass in one direction.
//
// The source records and the board lists are fetched concurrently; a failure
// in either aborts the pass before anything is written, leaving the ledger
// untouched and recording no history. The per-item loop then runs strictly
// sequentially in fetch order, and one item's failure never aborts the pass.
// Exactly one history record is written per completed pass.
func (e *Engine) RunDirectional(ctx context.Context, direction models.Direction, progress chan<- ProgressUpdate) (*SyncResult, error) {
	switch direction {
	case models.DirectionJiraToTrello, models.DirectionTrelloToJira:
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidDirection, direction)
	}
	if e.tracker == nil || e.board == nil {
		return nil, fmt.Errorf("%w: remote services not initialized", shared.ErrServiceUnavailable)
	}
	if e.ledger == nil {
		return nil, fmt.Errorf("%w: task ledger not initialized", shared.ErrServiceUnavailable)
	}

	start := time.Now()
	e.sendProgress(progress, fetchSourceUpdate(direction))

	var (
		issues  []models.Issue
		cards   []models.Card
		lists   []models.BoardList
		srcErr  error
		listErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if direction == models.DirectionJiraToTrello {
			issues, srcErr = e.tracker.ListIssues(ctx)
		} else {
			cards, srcErr = e.board.ListCards(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		lists, listErr = e.board.ListLists(ctx)
	}()
	wg.Wait()

	if srcErr != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, srcErr)
	}
	if listErr != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, listErr)
	}

	var results []ItemResult
	if direction == models.DirectionJiraToTrello {
		total := len(issues)
		for i, issue := range issues {
			e.sendProgress(progress, syncItemUpdate(i+1, total, issue.Key))
			err := e.syncIssueToCard(ctx, issue, lists)
			if err != nil {
				e.logger.Error("failed to sync issue", "key", issue.Key, "error", err)
			}
			results = append(results, ItemResult{Ref: issue.Key, Err: err})
		}
	} else {
		total := len(cards)
		for i, card := range cards {
			e.sendProgress(progress, syncItemUpdate(i+1, total, card.ID))
			err := e.syncCardToIssue(ctx, card, lists)
			if err != nil {
				e.logger.Error("failed to sync card", "id", card.ID, "error", err)
			}
			results = append(results, ItemResult{Ref: card.ID, Err: err})
		}
	}

	synced, errored, messages := summarize(results)
	result := &SyncResult{
		Direction:     direction,
		Success:       errored == 0,
		TasksSynced:   synced,
		TasksErrored:  errored,
		ErrorMessages: messages,
		Duration:      time.Since(start),
	}

	if e.recorder != nil {
		e.sendProgress(progress, recordHistoryUpdate())
		if _, err := e.recorder.Record(e.userID, e.syncType, direction, result); err != nil {
			return result, fmt.Errorf("%w: %v", shared.ErrHistoryRecord, err)
		}
	}

	e.sendProgress(progress, completedUpdate(result))
	return result, nil
}

// RunSingle syncs one record by remote ID.
// The record and the board lists are fetched, then the same create-or-update
// logic as a full pass applies. No history is recorded.
func (e *Engine) RunSingle(ctx context.Context, id string, direction models.Direction, progress chan<- ProgressUpdate) error {
	if id == "" {
		return fmt.Errorf("%w: record id", shared.ErrMissingArgument)
	}
	if e.tracker == nil || e.board == nil {
		return fmt.Errorf("%w: remote services not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchSourceUpdate(direction))

	lists, err := e.board.ListLists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	switch direction {
	case models.DirectionJiraToTrello:
		issue, err := e.tracker.GetIssue(ctx, id)
		if err != nil {
			return err
		}
		e.sendProgress(progress, syncItemUpdate(1, 1, issue.Key))
		return e.syncIssueToCard(ctx, *issue, lists)
	case models.DirectionTrelloToJira:
		card, err := e.board.GetCard(ctx, id)
		if err != nil {
			return err
		}
		e.sendProgress(progress, syncItemUpdate(1, 1, card.ID))
		return e.syncCardToIssue(ctx, *card, lists)
	default:
		return fmt.Errorf("%w: %s", shared.ErrInvalidDirection, direction)
	}
}

// syncIssueToCard translates one issue and creates or updates its card.
// The ledger entry records the outcome either way; an already-obtained card
// ID survives a failed pass so the next attempt resolves the same link.
func (e *Engine) syncIssueToCard(ctx context.Context, issue models.Issue, lists []models.BoardList) error {
	task, err := e.ledger.FindByJiraID(e.userID, issue.Key)
	if err != nil {
		return err
	}
	if task == nil {
		task = models.NewSyncTask(0, e.userID, issue.Key, "", issue.Summary())
	}
	task.SetTitle(issue.Summary())
	task.SetStatus(issue.StatusName())

	patch := e.mapper.IssueToCard(issue, lists)

	if err := e.applyCardPatch(ctx, task, patch, lists); err != nil {
		task.MarkError(err.Error())
		if saveErr := e.ledger.Upsert(task); saveErr != nil {
			e.logger.Error("failed to save ledger entry", "jira_id", issue.Key, "error", saveErr)
		}
		return err
	}

	task.MarkSynced(time.Now())
	return e.ledger.Upsert(task)
}

// applyCardPatch writes the translated card to the board.
// A patch with no list assignment falls back to the board's first list on
// create; updates never move the card implicitly.
func (e *Engine) applyCardPatch(ctx context.Context, task *models.SyncTask, patch models.CardPatch, lists []models.BoardList) error {
	if task.TrelloID() != "" {
		return e.board.UpdateCard(ctx, task.TrelloID(), patch)
	}

	if _, ok := patch["idList"]; !ok {
		if len(lists) == 0 {
			return fmt.Errorf("%w: board has no lists", shared.ErrInvalidInput)
		}
		patch["idList"] = lists[0].ID
	}

	card, err := e.board.CreateCard(ctx, patch)
	if err != nil {
		return err
	}
	task.SetTrelloID(card.ID)
	return nil
}

// syncCardToIssue translates one card and creates or updates its issue.
func (e *Engine) syncCardToIssue(ctx context.Context, card models.Card, lists []models.BoardList) error {
	task, err := e.ledger.FindByTrelloID(e.userID, card.ID)
	if err != nil {
		return err
	}
	if task == nil {
		task = models.NewSyncTask(0, e.userID, "", card.ID, card.Name)
	}
	task.SetTitle(card.Name)

	patch := e.mapper.CardToIssue(card, lists)
	statusName := patchStatusName(patch)
	task.SetStatus(statusName)

	if err := e.applyIssuePatch(ctx, task, patch, statusName); err != nil {
		task.MarkError(err.Error())
		if saveErr := e.ledger.Upsert(task); saveErr != nil {
			e.logger.Error("failed to save ledger entry", "trello_id", card.ID, "error", saveErr)
		}
		return err
	}

	task.MarkSynced(time.Now())
	return e.ledger.Upsert(task)
}

// applyIssuePatch writes the translated issue to the tracker.
// Status lands through a workflow transition after the field update, since
// Jira rejects status as a plain field edit.
func (e *Engine) applyIssuePatch(ctx context.Context, task *models.SyncTask, patch models.IssuePatch, statusName string) error {
	if task.JiraID() != "" {
		if err := e.tracker.UpdateIssue(ctx, task.JiraID(), patch); err != nil {
			return err
		}
	} else {
		issue, err := e.tracker.CreateIssue(ctx, patch)
		if err != nil {
			return err
		}
		task.SetJiraID(issue.Key)
	}

	if statusName == "" {
		return nil
	}
	return e.transitionIssue(ctx, task.JiraID(), statusName)
}

// transitionIssue moves an issue to the named status if a matching workflow
// transition is available. No matching transition is not an error: the
// issue may already be in the target status, or the workflow may not allow
// the move.
func (e *Engine) transitionIssue(ctx context.Context, key, statusName string) error {
	transitions, err := e.tracker.Transitions(ctx, key)
	if err != nil {
		return err
	}

	for _, tr := range transitions {
		if strings.EqualFold(tr.To.Name, statusName) || strings.EqualFold(tr.Name, statusName) {
			return e.tracker.TransitionIssue(ctx, key, tr.ID)
		}
	}

	e.logger.Debug("no transition to status", "key", key, "status", statusName)
	return nil
}

// patchStatusName extracts the target status name from an issue patch.
func patchStatusName(patch models.IssuePatch) string {
	status, ok := patch.Fields["status"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := status["name"].(string)
	return name
}

// Status reports the last run, live ledger counts, and the ten most recent history records.
func (e *Engine) Status(userID string) (*StatusReport, error) {
	if userID == "" {
		userID = e.userID
	}
	if e.ledger == nil || e.recorder == nil {
		return nil, fmt.Errorf("%w: ledger or recorder not initialized", shared.ErrServiceUnavailable)
	}

	counts, err := e.ledger.CountByState(userID)
	if err != nil {
		return nil, err
	}

	history, err := e.recorder.Recent(userID, 10)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		PendingTasks: counts[models.StatePending],
		ErroredTasks: counts[models.StateError],
		History:      history,
	}
	if len(history) > 0 {
		ended := history[0].EndedAt()
		report.LastSync = &ended
	}

	return report, nil
}
