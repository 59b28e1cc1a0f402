package tasks

import (
	"fmt"

	"github.com/desertthunder/tasksync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchLists
	SyncItems
	RecordHistory
	Completed
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchLists:
		return "fetch_lists"
	case SyncItems:
		return "sync_items"
	case RecordHistory:
		return "record_history"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

func fetchSourceUpdate(direction models.Direction) ProgressUpdate {
	source := "Jira issues"
	if direction == models.DirectionTrelloToJira {
		source = "Trello cards"
	}
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Fetching %s and board lists...", source),
	}
}

func syncItemUpdate(step, total int, ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Syncing %s (%d/%d)", ref, step, total),
		Data:    ref,
	}
}

func recordHistoryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordHistory,
		Step:    1,
		Total:   1,
		Message: "Recording sync history...",
	}
}

func completedUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync finished: %d synced, %d errored", result.TasksSynced, result.TasksErrored),
		Data:    result,
	}
}
