// Trello API implementation of [Board]
//
// Endpoints based on https://developer.atlassian.com/cloud/trello/rest/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
	"golang.org/x/time/rate"
)

// TrelloService implements [Board] against the Trello API using key/token auth.
type TrelloService struct {
	baseURL    string
	apiKey     string
	apiToken   string
	boardID    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTrelloService creates a Trello client from connection settings.
// rateLimit is requests per second; zero or negative disables throttling.
func NewTrelloService(cfg shared.TrelloConfig, rateLimit float64) (*TrelloService, error) {
	if cfg.APIKey == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: trello api key and token", shared.ErrMissingCredentials)
	}
	if cfg.BoardID == "" {
		return nil, fmt.Errorf("%w: trello board id", shared.ErrMissingCredentials)
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &TrelloService{
		baseURL:    "https://api.trello.com/1",
		apiKey:     cfg.APIKey,
		apiToken:   cfg.APIToken,
		boardID:    cfg.BoardID,
		httpClient: http.DefaultClient,
		limiter:    limiter,
	}, nil
}

func (s *TrelloService) Name() string {
	return "Trello"
}

// doRequest performs an authenticated HTTP request against the Trello API.
// Card attributes travel as query parameters, which is how Trello's write
// endpoints expect them.
func (s *TrelloService) doRequest(ctx context.Context, method, endpoint string, params models.CardPatch, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("token", s.apiToken)
	for k, v := range params {
		switch val := v.(type) {
		case string:
			query.Set(k, val)
		case []string:
			query.Set(k, strings.Join(val, ","))
		case []models.Label:
			// Labels are created separately; Trello's card endpoints take label IDs.
			continue
		default:
			query.Set(k, fmt.Sprint(val))
		}
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	apiURL := s.baseURL + endpoint + sep + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrCardNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: trello returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListCards retrieves all open cards on the configured board.
func (s *TrelloService) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	endpoint := fmt.Sprintf("/boards/%s/cards", url.PathEscape(s.boardID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard retrieves a single card by ID.
func (s *TrelloService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: card id", shared.ErrMissingArgument)
	}

	var card models.Card
	endpoint := fmt.Sprintf("/cards/%s", url.PathEscape(id))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCard creates a card from an attribute patch and returns the created record.
func (s *TrelloService) CreateCard(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
	if _, ok := patch["idList"]; !ok {
		return nil, fmt.Errorf("%w: card list", shared.ErrMissingArgument)
	}

	var card models.Card
	if err := s.doRequest(ctx, http.MethodPost, "/cards", patch, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard applies an attribute patch to an existing card.
func (s *TrelloService) UpdateCard(ctx context.Context, id string, patch models.CardPatch) error {
	if id == "" {
		return fmt.Errorf("%w: card id", shared.ErrMissingArgument)
	}
	if len(patch) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/cards/%s", url.PathEscape(id))
	return s.doRequest(ctx, http.MethodPut, endpoint, patch, nil)
}

// ListLists retrieves the open lists (columns) on the configured board.
func (s *TrelloService) ListLists(ctx context.Context) ([]models.BoardList, error) {
	var lists []models.BoardList
	endpoint := fmt.Sprintf("/boards/%s/lists", url.PathEscape(s.boardID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListMembers retrieves the members of the configured board.
func (s *TrelloService) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	endpoint := fmt.Sprintf("/boards/%s/members", url.PathEscape(s.boardID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}
