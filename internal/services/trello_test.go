package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
)

func testTrelloConfig() shared.TrelloConfig {
	return shared.TrelloConfig{
		APIKey:   "key",
		APIToken: "token",
		BoardID:  "board123",
	}
}

func newTestTrello(t *testing.T, handler http.HandlerFunc) (*TrelloService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	srv, err := NewTrelloService(testTrelloConfig(), 0)
	if err != nil {
		server.Close()
		t.Fatalf("failed to create trello service: %v", err)
	}
	srv.baseURL = server.URL
	return srv, server
}

func TestNewTrelloService(t *testing.T) {
	t.Run("With Valid Config", func(t *testing.T) {
		srv, err := NewTrelloService(testTrelloConfig(), 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Name() != "Trello" {
			t.Errorf("expected service name 'Trello', got %s", srv.Name())
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		cfg := testTrelloConfig()
		cfg.APIToken = ""

		_, err := NewTrelloService(cfg, 5)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Board ID", func(t *testing.T) {
		cfg := testTrelloConfig()
		cfg.BoardID = ""

		if _, err := NewTrelloService(cfg, 5); err == nil {
			t.Error("expected error for missing board id")
		}
	})
}

func TestTrelloService(t *testing.T) {
	t.Run("ListCards", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/boards/board123/cards" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("key") != "key" || r.URL.Query().Get("token") != "token" {
				t.Error("expected key/token query parameters")
			}

			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "card1", "name": "Fix bug", "idList": "c2"},
			})
		})
		defer server.Close()

		cards, err := srv.ListCards(context.Background())
		if err != nil {
			t.Fatalf("ListCards failed: %v", err)
		}
		if len(cards) != 1 || cards[0].Name != "Fix bug" {
			t.Errorf("unexpected cards %+v", cards)
		}
	})

	t.Run("CreateCard", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/cards" {
				t.Errorf("expected POST /cards, got %s %s", r.Method, r.URL.Path)
			}

			q := r.URL.Query()
			if q.Get("name") != "Fix bug" {
				t.Errorf("expected name 'Fix bug', got %q", q.Get("name"))
			}
			if q.Get("idList") != "c2" {
				t.Errorf("expected idList c2, got %q", q.Get("idList"))
			}

			json.NewEncoder(w).Encode(map[string]any{"id": "card9", "name": "Fix bug", "idList": "c2"})
		})
		defer server.Close()

		card, err := srv.CreateCard(context.Background(), models.CardPatch{
			"name":   "Fix bug",
			"idList": "c2",
		})
		if err != nil {
			t.Fatalf("CreateCard failed: %v", err)
		}
		if card.ID != "card9" {
			t.Errorf("expected card id card9, got %s", card.ID)
		}
	})

	t.Run("CreateCard Without List", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be sent without a list")
		})
		defer server.Close()

		_, err := srv.CreateCard(context.Background(), models.CardPatch{"name": "Orphan"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("UpdateCard", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/cards/card1" {
				t.Errorf("expected PUT /cards/card1, got %s %s", r.Method, r.URL.Path)
			}
			if r.URL.Query().Get("idMembers") != "m1,m2" {
				t.Errorf("expected joined member ids, got %q", r.URL.Query().Get("idMembers"))
			}
			json.NewEncoder(w).Encode(map[string]any{"id": "card1"})
		})
		defer server.Close()

		err := srv.UpdateCard(context.Background(), "card1", models.CardPatch{
			"idMembers": []string{"m1", "m2"},
		})
		if err != nil {
			t.Fatalf("UpdateCard failed: %v", err)
		}
	})

	t.Run("UpdateCard Skips Empty Patch", func(t *testing.T) {
		called := false
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		defer server.Close()

		if err := srv.UpdateCard(context.Background(), "card1", models.CardPatch{}); err != nil {
			t.Fatalf("UpdateCard failed: %v", err)
		}
		if called {
			t.Error("empty patch should not hit the API")
		}
	})

	t.Run("ListLists", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/boards/board123/lists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "c1", "name": "To Do"},
				{"id": "c2", "name": "Doing"},
			})
		})
		defer server.Close()

		lists, err := srv.ListLists(context.Background())
		if err != nil {
			t.Fatalf("ListLists failed: %v", err)
		}
		if len(lists) != 2 || lists[1].Name != "Doing" {
			t.Errorf("unexpected lists %+v", lists)
		}
	})

	t.Run("GetCard Not Found", func(t *testing.T) {
		srv, server := newTestTrello(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		defer server.Close()

		_, err := srv.GetCard(context.Background(), "missing")
		if !errors.Is(err, shared.ErrCardNotFound) {
			t.Errorf("expected ErrCardNotFound, got %v", err)
		}
	})
}
