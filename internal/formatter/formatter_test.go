package formatter

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/tasks"
)

func testResult() *tasks.SyncResult {
	return &tasks.SyncResult{
		Direction:     models.DirectionJiraToTrello,
		Success:       false,
		TasksSynced:   2,
		TasksErrored:  1,
		ErrorMessages: []string{"PROJ-2: trello api request failed"},
		Duration:      1500 * time.Millisecond,
	}
}

func TestResultToText(t *testing.T) {
	output := string(ResultToText(testResult()))

	for _, want := range []string{"jira_to_trello", "with errors", "Synced: 2", "Errored: 1", "PROJ-2"} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q:\n%s", want, output)
		}
	}

	t.Run("Clean Result Has No Error Section", func(t *testing.T) {
		result := testResult()
		result.Success = true
		result.TasksErrored = 0
		result.ErrorMessages = nil

		output := string(ResultToText(result))
		if strings.Contains(output, "Errors:") {
			t.Errorf("clean result should not list errors:\n%s", output)
		}
		if !strings.Contains(output, "finished ok") {
			t.Errorf("clean result should read as ok:\n%s", output)
		}
	})
}

func TestResultToMarkdown(t *testing.T) {
	output := string(ResultToMarkdown(testResult()))

	if !strings.HasPrefix(output, "# Sync Result: jira_to_trello") {
		t.Errorf("markdown should open with a title heading:\n%s", output)
	}
	for _, want := range []string{"**Synced**: 2", "**Errored**: 1", "## Errors", "- PROJ-2"} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q:\n%s", want, output)
		}
	}
}

func TestStatusToText(t *testing.T) {
	run := models.NewSyncRun(1, "user-1", models.SyncManual, models.DirectionJiraToTrello)
	run.SetCounts(3, 0)

	report := &tasks.StatusReport{
		PendingTasks: 4,
		ErroredTasks: 1,
		History:      []*models.SyncRun{run},
	}
	last := run.EndedAt()
	report.LastSync = &last

	output := string(StatusToText(report))
	for _, want := range []string{"Pending tasks: 4", "Errored tasks: 1", "Recent runs:", "success", "synced=3"} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q:\n%s", want, output)
		}
	}

	t.Run("Never Synced", func(t *testing.T) {
		output := string(StatusToText(&tasks.StatusReport{}))
		if !strings.Contains(output, "Last sync: never") {
			t.Errorf("empty report should say never:\n%s", output)
		}
	})
}

func TestHistoryToCSV(t *testing.T) {
	first := models.NewSyncRun(1, "user-1", models.SyncManual, models.DirectionJiraToTrello)
	first.SetCounts(5, 0)
	first.SetDuration(2 * time.Second)
	second := models.NewSyncRun(2, "user-1", models.SyncAutomatic, models.DirectionTrelloToJira)
	second.SetCounts(1, 2)

	data, err := HistoryToCSV([]*models.SyncRun{first, second})
	if err != nil {
		t.Fatalf("failed to render CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][1] != "Direction" || records[0][4] != "Synced" {
		t.Errorf("unexpected headers: %v", records[0])
	}
	if records[1][3] != "success" || records[1][4] != "5" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][2] != "automatic" || records[2][3] != "partial" {
		t.Errorf("unexpected second row: %v", records[2])
	}
}

func TestHistoryToMarkdown(t *testing.T) {
	run := models.NewSyncRun(1, "user-1", models.SyncManual, models.DirectionJiraToTrello)
	run.SetCounts(0, 3)

	output := string(HistoryToMarkdown([]*models.SyncRun{run}))
	if !strings.Contains(output, "| jira_to_trello | manual | failed | 0 | 3 |") {
		t.Errorf("markdown table row missing:\n%s", output)
	}

	t.Run("Empty History", func(t *testing.T) {
		output := string(HistoryToMarkdown(nil))
		if !strings.Contains(output, "No runs recorded.") {
			t.Errorf("empty history should say so:\n%s", output)
		}
	})
}

func TestLedgerToCSV(t *testing.T) {
	synced := models.NewSyncTask(1, "user-1", "PROJ-1", "card-1", "Fix bug")
	synced.SetStatus("In Progress")
	synced.MarkSynced(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	errored := models.NewSyncTask(2, "user-1", "PROJ-2", "", "Write docs")
	errored.MarkError("trello api request failed")

	data, err := LedgerToCSV([]*models.SyncTask{synced, errored})
	if err != nil {
		t.Fatalf("failed to render CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][0] != "PROJ-1" || records[1][4] != "synced" || records[1][5] != "2025-06-01 12:00:00" {
		t.Errorf("unexpected synced row: %v", records[1])
	}
	if records[2][4] != "error" || records[2][6] != "trello api request failed" {
		t.Errorf("unexpected errored row: %v", records[2])
	}
}

func TestMappingsToText(t *testing.T) {
	output := string(MappingsToText(
		[]models.FieldMapping{{JiraField: "summary", TrelloField: "name"}},
		[]models.StatusMapping{{JiraStatus: "In Progress", TrelloStatus: "Doing"}},
	))

	for _, want := range []string{"Field mappings:", "summary", "-> name", "Status mappings:", "In Progress", "-> Doing"} {
		if !strings.Contains(output, want) {
			t.Errorf("mappings output missing %q:\n%s", want, output)
		}
	}
}
