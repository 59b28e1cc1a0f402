// package formatter renders sync results, status reports, and history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/tasks"
)

const timestampLayout = "2006-01-02 15:04:05"

// ResultToText renders a sync result as plain text.
func ResultToText(result *tasks.SyncResult) []byte {
	var buf bytes.Buffer

	outcome := "ok"
	if !result.Success {
		outcome = "with errors"
	}
	buf.WriteString(fmt.Sprintf("Sync %s finished %s in %s\n", result.Direction, outcome, result.Duration.Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("Synced: %d\n", result.TasksSynced))
	buf.WriteString(fmt.Sprintf("Errored: %d\n", result.TasksErrored))

	if len(result.ErrorMessages) > 0 {
		buf.WriteString("\nErrors:\n")
		for _, msg := range result.ErrorMessages {
			buf.WriteString(fmt.Sprintf("  - %s\n", msg))
		}
	}

	return buf.Bytes()
}

// ResultToMarkdown renders a sync result as Markdown.
func ResultToMarkdown(result *tasks.SyncResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync Result: %s\n\n", result.Direction))
	buf.WriteString(fmt.Sprintf("**Synced**: %d\n", result.TasksSynced))
	buf.WriteString(fmt.Sprintf("**Errored**: %d\n", result.TasksErrored))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n", result.Duration.Round(time.Millisecond)))

	if len(result.ErrorMessages) > 0 {
		buf.WriteString("\n## Errors\n\n")
		for _, msg := range result.ErrorMessages {
			buf.WriteString(fmt.Sprintf("- %s\n", msg))
		}
	}

	return buf.Bytes()
}

// StatusToText renders a status report as plain text.
func StatusToText(report *tasks.StatusReport) []byte {
	var buf bytes.Buffer

	if report.LastSync != nil {
		buf.WriteString(fmt.Sprintf("Last sync: %s\n", report.LastSync.Format(timestampLayout)))
	} else {
		buf.WriteString("Last sync: never\n")
	}
	buf.WriteString(fmt.Sprintf("Pending tasks: %d\n", report.PendingTasks))
	buf.WriteString(fmt.Sprintf("Errored tasks: %d\n", report.ErroredTasks))

	if len(report.History) > 0 {
		buf.WriteString("\nRecent runs:\n")
		for _, run := range report.History {
			buf.WriteString(fmt.Sprintf("  %s  %-14s %-15s %-7s synced=%d errored=%d\n",
				run.EndedAt().Format(timestampLayout), run.Direction(), string(run.SyncType()),
				string(run.Status()), run.TasksSynced(), run.TasksErrored()))
		}
	}

	return buf.Bytes()
}

// HistoryToCSV renders history records as CSV with columns: Time, Direction, Type, Status, Synced, Errored, Duration
func HistoryToCSV(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Time", "Direction", "Type", "Status", "Synced", "Errored", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.EndedAt().Format(timestampLayout),
			string(run.Direction()),
			string(run.SyncType()),
			string(run.Status()),
			strconv.Itoa(run.TasksSynced()),
			strconv.Itoa(run.TasksErrored()),
			run.Duration().Round(time.Millisecond).String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown renders history records as a Markdown table.
func HistoryToMarkdown(runs []*models.SyncRun) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Sync History\n\n")
	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes()
	}

	buf.WriteString("| Time | Direction | Type | Status | Synced | Errored |\n")
	buf.WriteString("|------|-----------|------|--------|--------|--------|\n")
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d |\n",
			run.EndedAt().Format(timestampLayout), run.Direction(), run.SyncType(),
			run.Status(), run.TasksSynced(), run.TasksErrored()))
	}

	return buf.Bytes()
}

// LedgerToCSV renders ledger entries as CSV with columns: JiraID, TrelloID, Title, Status, State, LastSyncedAt, Error
func LedgerToCSV(entries []*models.SyncTask) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"JiraID", "TrelloID", "Title", "Status", "State", "LastSyncedAt", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		lastSynced := ""
		if ts := entry.LastSyncedAt(); ts != nil {
			lastSynced = ts.Format(timestampLayout)
		}
		record := []string{
			entry.JiraID(),
			entry.TrelloID(),
			entry.Title(),
			entry.Status(),
			string(entry.State()),
			lastSynced,
			entry.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MappingsToText renders mapping tables as aligned plain text.
func MappingsToText(fields []models.FieldMapping, statuses []models.StatusMapping) []byte {
	var buf bytes.Buffer

	buf.WriteString("Field mappings:\n")
	for _, fm := range fields {
		buf.WriteString(fmt.Sprintf("  %-24s -> %s\n", fm.JiraField, fm.TrelloField))
	}

	buf.WriteString("\nStatus mappings:\n")
	for _, sm := range statuses {
		buf.WriteString(fmt.Sprintf("  %-24s -> %s\n", sm.JiraStatus, sm.TrelloStatus))
	}

	return buf.Bytes()
}
