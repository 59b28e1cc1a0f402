package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/repositories"
	"github.com/desertthunder/tasksync/internal/shared"
)

// mockTracker implements services.Tracker with overridable behavior per test.
type mockTracker struct {
	listIssues      func(ctx context.Context) ([]models.Issue, error)
	getIssue        func(ctx context.Context, key string) (*models.Issue, error)
	createIssue     func(ctx context.Context, patch models.IssuePatch) (*models.Issue, error)
	updateIssue     func(ctx context.Context, key string, patch models.IssuePatch) error
	transitions     func(ctx context.Context, key string) ([]models.Transition, error)
	transitionIssue func(ctx context.Context, key, transitionID string) error
}

func (m *mockTracker) ListIssues(ctx context.Context) ([]models.Issue, error) {
	if m.listIssues != nil {
		return m.listIssues(ctx)
	}
	return nil, nil
}

func (m *mockTracker) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	if m.getIssue != nil {
		return m.getIssue(ctx, key)
	}
	return nil, shared.ErrIssueNotFound
}

func (m *mockTracker) CreateIssue(ctx context.Context, patch models.IssuePatch) (*models.Issue, error) {
	if m.createIssue != nil {
		return m.createIssue(ctx, patch)
	}
	return &models.Issue{ID: "10001", Key: "PROJ-1"}, nil
}

func (m *mockTracker) UpdateIssue(ctx context.Context, key string, patch models.IssuePatch) error {
	if m.updateIssue != nil {
		return m.updateIssue(ctx, key, patch)
	}
	return nil
}

func (m *mockTracker) Transitions(ctx context.Context, key string) ([]models.Transition, error) {
	if m.transitions != nil {
		return m.transitions(ctx, key)
	}
	return nil, nil
}

func (m *mockTracker) TransitionIssue(ctx context.Context, key, transitionID string) error {
	if m.transitionIssue != nil {
		return m.transitionIssue(ctx, key, transitionID)
	}
	return nil
}

func (m *mockTracker) Name() string { return "Jira" }

// mockBoard implements services.Board with overridable behavior per test.
type mockBoard struct {
	listCards  func(ctx context.Context) ([]models.Card, error)
	getCard    func(ctx context.Context, id string) (*models.Card, error)
	createCard func(ctx context.Context, patch models.CardPatch) (*models.Card, error)
	updateCard func(ctx context.Context, id string, patch models.CardPatch) error
	listLists  func(ctx context.Context) ([]models.BoardList, error)
}

func (m *mockBoard) ListCards(ctx context.Context) ([]models.Card, error) {
	if m.listCards != nil {
		return m.listCards(ctx)
	}
	return nil, nil
}

func (m *mockBoard) GetCard(ctx context.Context, id string) (*models.Card, error) {
	if m.getCard != nil {
		return m.getCard(ctx, id)
	}
	return nil, shared.ErrCardNotFound
}

func (m *mockBoard) CreateCard(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
	if m.createCard != nil {
		return m.createCard(ctx, patch)
	}
	return &models.Card{ID: "card-new"}, nil
}

func (m *mockBoard) UpdateCard(ctx context.Context, id string, patch models.CardPatch) error {
	if m.updateCard != nil {
		return m.updateCard(ctx, id, patch)
	}
	return nil
}

func (m *mockBoard) ListLists(ctx context.Context) ([]models.BoardList, error) {
	if m.listLists != nil {
		return m.listLists(ctx)
	}
	return []models.BoardList{
		{ID: "c1", Name: "To Do"},
		{ID: "c2", Name: "Doing"},
		{ID: "c3", Name: "Done"},
	}, nil
}

func (m *mockBoard) ListMembers(ctx context.Context) ([]models.Member, error) {
	return nil, nil
}

func (m *mockBoard) Name() string { return "Trello" }

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// newTestEngine wires an Engine to mocks and an in-memory database.
func newTestEngine(t *testing.T, db *sql.DB, tracker *mockTracker, board *mockBoard) *Engine {
	t.Helper()

	return NewEngine(EngineOpts{
		Tracker:  tracker,
		Board:    board,
		Ledger:   repositories.NewTaskRepository(db),
		Recorder: NewRecorder(repositories.NewRunRepository(db), nil),
		UserID:   "user-1",
		SyncType: models.SyncManual,
	})
}

func testIssues(n int) []models.Issue {
	issues := make([]models.Issue, n)
	for i := range issues {
		issues[i] = models.Issue{
			ID:  fmt.Sprintf("1000%d", i+1),
			Key: fmt.Sprintf("PROJ-%d", i+1),
			Fields: map[string]any{
				"summary": fmt.Sprintf("Task %d", i+1),
				"status":  map[string]any{"name": "In Progress"},
			},
		}
	}
	return issues
}

func TestSummarize(t *testing.T) {
	results := []ItemResult{
		{Ref: "PROJ-1"},
		{Ref: "PROJ-2", Err: errors.New("boom")},
		{Ref: "PROJ-3"},
	}

	synced, errored, messages := summarize(results)
	if synced != 2 || errored != 1 {
		t.Errorf("summarize counts = (%d, %d), want (2, 1)", synced, errored)
	}
	if len(messages) != 1 || messages[0] != "PROJ-2: boom" {
		t.Errorf("messages = %v", messages)
	}
}

func TestRunDirectionalJiraToTrello(t *testing.T) {
	t.Run("Full Pass", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		created := 0
		tracker := &mockTracker{
			listIssues: func(ctx context.Context) ([]models.Issue, error) {
				return testIssues(3), nil
			},
		}
		board := &mockBoard{
			createCard: func(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
				created++
				return &models.Card{ID: fmt.Sprintf("card-%d", created), IDList: patch["idList"].(string)}, nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		result, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, nil)
		if err != nil {
			t.Fatalf("RunDirectional failed: %v", err)
		}

		if !result.Success || result.TasksSynced != 3 || result.TasksErrored != 0 {
			t.Errorf("result = %+v", result)
		}
		if created != 3 {
			t.Errorf("expected 3 cards created, got %d", created)
		}

		ledger := repositories.NewTaskRepository(db)
		entries, _ := ledger.List(map[string]any{"user_id": "user-1"})
		if len(entries) != 3 {
			t.Fatalf("expected 3 ledger entries, got %d", len(entries))
		}
		for _, entry := range entries {
			if entry.State() != models.StateSynced {
				t.Errorf("entry %s state = %q, want synced", entry.JiraID(), entry.State())
			}
			if entry.TrelloID() == "" {
				t.Errorf("entry %s missing counterpart ID", entry.JiraID())
			}
		}

		runs, _ := repositories.NewRunRepository(db).RecentByUser("user-1", 10)
		if len(runs) != 1 {
			t.Fatalf("expected exactly one history record, got %d", len(runs))
		}
		if runs[0].Status() != models.RunSuccess {
			t.Errorf("run status = %q, want success", runs[0].Status())
		}
	})

	t.Run("Partial Failure Keeps Counting", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracker := &mockTracker{
			listIssues: func(ctx context.Context) ([]models.Issue, error) {
				return testIssues(3), nil
			},
		}
		board := &mockBoard{
			createCard: func(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
				if patch["name"] == "Task 2" {
					return nil, errors.New("trello returned status 500")
				}
				return &models.Card{ID: "card-ok"}, nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		result, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, nil)
		if err != nil {
			t.Fatalf("RunDirectional failed: %v", err)
		}

		if result.Success {
			t.Error("pass with errors should not report success")
		}
		if result.TasksSynced != 2 || result.TasksErrored != 1 {
			t.Errorf("counts = (%d, %d), want (2, 1)", result.TasksSynced, result.TasksErrored)
		}
		if len(result.ErrorMessages) != 1 {
			t.Fatalf("expected 1 error message, got %d", len(result.ErrorMessages))
		}

		runs, _ := repositories.NewRunRepository(db).RecentByUser("user-1", 10)
		if len(runs) != 1 || runs[0].Status() != models.RunPartial {
			t.Errorf("expected one partial run, got %v", runs)
		}

		failed, _ := repositories.NewTaskRepository(db).FindByJiraID("user-1", "PROJ-2")
		if failed == nil || failed.State() != models.StateError {
			t.Error("failed item should have an error-state ledger entry")
		}
	})

	t.Run("All Errored Derives Failed", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracker := &mockTracker{
			listIssues: func(ctx context.Context) ([]models.Issue, error) {
				return testIssues(2), nil
			},
		}
		board := &mockBoard{
			createCard: func(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
				return nil, errors.New("board unavailable")
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		result, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, nil)
		if err != nil {
			t.Fatalf("RunDirectional failed: %v", err)
		}
		if result.TasksSynced != 0 || result.TasksErrored != 2 {
			t.Errorf("counts = (%d, %d)", result.TasksSynced, result.TasksErrored)
		}

		runs, _ := repositories.NewRunRepository(db).RecentByUser("user-1", 10)
		if len(runs) != 1 || runs[0].Status() != models.RunFailed {
			t.Errorf("expected one failed run, got %v", runs)
		}
	})

	t.Run("Second Pass Updates Instead Of Creating", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		created, updated := 0, 0
		tracker := &mockTracker{
			listIssues: func(ctx context.Context) ([]models.Issue, error) {
				return testIssues(2), nil
			},
		}
		board := &mockBoard{
			createCard: func(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
				created++
				return &models.Card{ID: fmt.Sprintf("card-%d", created)}, nil
			},
			updateCard: func(ctx context.Context, id string, patch models.CardPatch) error {
				updated++
				return nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		for i := 0; i < 2; i++ {
			if _, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, nil); err != nil {
				t.Fatalf("pass %d failed: %v", i+1, err)
			}
		}

		if created != 2 || updated != 2 {
			t.Errorf("created = %d, updated = %d, want 2 each", created, updated)
		}

		entries, _ := repositories.NewTaskRepository(db).List(map[string]any{"user_id": "user-1"})
		if len(entries) != 2 {
			t.Errorf("expected 2 ledger entries after two passes, got %d", len(entries))
		}
	})

	t.Run("Fetch Failure Aborts Without History", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracker := &mockTracker{
			listIssues: func(ctx context.Context) ([]models.Issue, error) {
				return nil, errors.New("jira unreachable")
			},
		}

		engine := newTestEngine(t, db, tracker, &mockBoard{})
		_, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, nil)
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}

		runs, _ := repositories.NewRunRepository(db).RecentByUser("user-1", 10)
		if len(runs) != 0 {
			t.Errorf("fetch failure should record no history, got %d runs", len(runs))
		}

		entries, _ := repositories.NewTaskRepository(db).List(map[string]any{"user_id": "user-1"})
		if len(entries) != 0 {
			t.Errorf("fetch failure should leave the ledger untouched, got %d entries", len(entries))
		}
	})

	t.Run("Invalid Direction", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine := newTestEngine(t, db, &mockTracker{}, &mockBoard{})
		_, err := engine.RunDirectional(context.Background(), models.DirectionBidirectional, nil)
		if !errors.Is(err, shared.ErrInvalidDirection) {
			t.Errorf("expected ErrInvalidDirection, got %v", err)
		}
	})
}

func TestRunDirectionalTrelloToJira(t *testing.T) {
	t.Run("Creates Issues And Transitions", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		var transitioned []string
		tracker := &mockTracker{
			createIssue: func(ctx context.Context, patch models.IssuePatch) (*models.Issue, error) {
				if patch.Fields["summary"] != "Fix bug" {
					t.Errorf("unexpected summary %v", patch.Fields["summary"])
				}
				return &models.Issue{ID: "10009", Key: "PROJ-9"}, nil
			},
			transitions: func(ctx context.Context, key string) ([]models.Transition, error) {
				tr := models.Transition{ID: "31", Name: "Start Progress"}
				tr.To.Name = "In Progress"
				return []models.Transition{tr}, nil
			},
			transitionIssue: func(ctx context.Context, key, transitionID string) error {
				transitioned = append(transitioned, key+":"+transitionID)
				return nil
			},
		}
		board := &mockBoard{
			listCards: func(ctx context.Context) ([]models.Card, error) {
				return []models.Card{{ID: "card1", Name: "Fix bug", IDList: "c2"}}, nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		result, err := engine.RunDirectional(context.Background(), models.DirectionTrelloToJira, nil)
		if err != nil {
			t.Fatalf("RunDirectional failed: %v", err)
		}
		if result.TasksSynced != 1 {
			t.Errorf("synced = %d", result.TasksSynced)
		}
		if len(transitioned) != 1 || transitioned[0] != "PROJ-9:31" {
			t.Errorf("transitions applied = %v", transitioned)
		}

		entry, _ := repositories.NewTaskRepository(db).FindByTrelloID("user-1", "card1")
		if entry == nil || entry.JiraID() != "PROJ-9" {
			t.Error("ledger should link the created issue")
		}
	})

	t.Run("Unknown List Skips Transition", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracker := &mockTracker{
			transitions: func(ctx context.Context, key string) ([]models.Transition, error) {
				t.Error("no transition lookup expected without a status")
				return nil, nil
			},
		}
		board := &mockBoard{
			listCards: func(ctx context.Context) ([]models.Card, error) {
				return []models.Card{{ID: "card1", Name: "Orphan", IDList: "unknown"}}, nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		if _, err := engine.RunDirectional(context.Background(), models.DirectionTrelloToJira, nil); err != nil {
			t.Fatalf("RunDirectional failed: %v", err)
		}
	})
}

func TestRunSingle(t *testing.T) {
	t.Run("Creates When Unlinked", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracker := &mockTracker{
			getIssue: func(ctx context.Context, key string) (*models.Issue, error) {
				issue := testIssues(1)[0]
				return &issue, nil
			},
		}
		board := &mockBoard{}

		engine := newTestEngine(t, db, tracker, board)
		if err := engine.RunSingle(context.Background(), "PROJ-1", models.DirectionJiraToTrello, nil); err != nil {
			t.Fatalf("RunSingle failed: %v", err)
		}

		runs, _ := repositories.NewRunRepository(db).RecentByUser("user-1", 10)
		if len(runs) != 0 {
			t.Errorf("single sync should record no history, got %d runs", len(runs))
		}
	})

	t.Run("Retry Resolves Existing Link", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		ledger := repositories.NewTaskRepository(db)
		prior := models.NewSyncTask(0, "user-1", "PROJ-1", "card-existing", "Task 1")
		prior.MarkError("transient failure")
		if err := ledger.Create(prior); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}

		updated := ""
		tracker := &mockTracker{
			getIssue: func(ctx context.Context, key string) (*models.Issue, error) {
				issue := testIssues(1)[0]
				return &issue, nil
			},
		}
		board := &mockBoard{
			createCard: func(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
				t.Error("retry should update the linked card, not create a new one")
				return nil, errors.New("unexpected create")
			},
			updateCard: func(ctx context.Context, id string, patch models.CardPatch) error {
				updated = id
				return nil
			},
		}

		engine := newTestEngine(t, db, tracker, board)
		if err := engine.RunSingle(context.Background(), "PROJ-1", models.DirectionJiraToTrello, nil); err != nil {
			t.Fatalf("RunSingle failed: %v", err)
		}
		if updated != "card-existing" {
			t.Errorf("updated card = %q, want card-existing", updated)
		}

		entry, _ := ledger.FindByJiraID("user-1", "PROJ-1")
		if entry.State() != models.StateSynced || entry.ErrorMessage() != "" {
			t.Errorf("retry should clear the error, got state %q message %q", entry.State(), entry.ErrorMessage())
		}
	})

	t.Run("Missing ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine := newTestEngine(t, db, &mockTracker{}, &mockBoard{})
		err := engine.RunSingle(context.Background(), "", models.DirectionJiraToTrello, nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ledger := repositories.NewTaskRepository(db)
	states := []models.SyncState{models.StatePending, models.StatePending, models.StateError, models.StateSynced}
	for i, state := range states {
		task := models.NewSyncTask(0, "user-1", fmt.Sprintf("PROJ-%d", i+1), "", "task")
		task.SetState(state)
		if err := ledger.Create(task); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
	}

	recorder := NewRecorder(repositories.NewRunRepository(db), nil)
	for i := 0; i < 12; i++ {
		result := &SyncResult{TasksSynced: i, Success: true}
		if _, err := recorder.Record("user-1", models.SyncAutomatic, models.DirectionJiraToTrello, result); err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}
	}

	engine := newTestEngine(t, db, &mockTracker{}, &mockBoard{})
	report, err := engine.Status("user-1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if report.PendingTasks != 2 || report.ErroredTasks != 1 {
		t.Errorf("counts = (%d pending, %d errored)", report.PendingTasks, report.ErroredTasks)
	}
	if len(report.History) != 10 {
		t.Errorf("expected history capped at 10, got %d", len(report.History))
	}
	if report.LastSync == nil {
		t.Error("expected a last sync timestamp")
	}
	if report.History[0].TasksSynced() != 11 {
		t.Errorf("expected newest run first, got synced=%d", report.History[0].TasksSynced())
	}
}

func TestProgressUpdatesNonBlocking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tracker := &mockTracker{
		listIssues: func(ctx context.Context) ([]models.Issue, error) {
			return testIssues(5), nil
		},
	}

	engine := newTestEngine(t, db, tracker, &mockBoard{})

	// Unbuffered channel with no reader: updates must be dropped, not block.
	progress := make(chan ProgressUpdate)
	result, err := engine.RunDirectional(context.Background(), models.DirectionJiraToTrello, progress)
	if err != nil {
		t.Fatalf("RunDirectional failed: %v", err)
	}
	if result.TasksSynced != 5 {
		t.Errorf("synced = %d", result.TasksSynced)
	}
}
