// Jira REST API v3 implementation of [Tracker]
//
// Endpoints based on https://developer.atlassian.com/cloud/jira/platform/rest/v3/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/shared"
	"golang.org/x/time/rate"
)

const defaultSearchLimit = 50

// searchResponse is the envelope returned by the Jira search endpoint.
type searchResponse struct {
	Issues []models.Issue `json:"issues"`
	Total  int            `json:"total"`
}

// transitionsResponse is the envelope returned by the transitions endpoint.
type transitionsResponse struct {
	Transitions []models.Transition `json:"transitions"`
}

// JiraService implements [Tracker] against the Jira Cloud REST API using basic auth.
type JiraService struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewJiraService creates a Jira client from connection settings.
// rateLimit is requests per second; zero or negative disables throttling.
func NewJiraService(cfg shared.JiraConfig, rateLimit float64) (*JiraService, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("%w: jira domain", shared.ErrMissingCredentials)
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: jira email and api token", shared.ErrMissingCredentials)
	}
	if cfg.ProjectKey == "" {
		return nil, fmt.Errorf("%w: jira project key", shared.ErrMissingCredentials)
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &JiraService{
		baseURL:    fmt.Sprintf("https://%s/rest/api/3", cfg.Domain),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		projectKey: cfg.ProjectKey,
		httpClient: http.DefaultClient,
		limiter:    limiter,
	}, nil
}

func (s *JiraService) Name() string {
	return "Jira"
}

// doRequest performs an authenticated HTTP request against the Jira API.
func (s *JiraService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(s.email, s.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrIssueNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: jira returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListIssues retrieves issues in the configured project, most recently updated first.
func (s *JiraService) ListIssues(ctx context.Context) ([]models.Issue, error) {
	jql := fmt.Sprintf("project=%s ORDER BY updated DESC", s.projectKey)
	endpoint := fmt.Sprintf("/search?jql=%s&maxResults=%d", url.QueryEscape(jql), defaultSearchLimit)

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response.Issues, nil
}

// GetIssue retrieves a single issue by key or ID.
func (s *JiraService) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: issue key", shared.ErrMissingArgument)
	}

	var issue models.Issue
	endpoint := fmt.Sprintf("/issue/%s", url.PathEscape(key))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates an issue in the configured project from a field patch.
// A default issue type is supplied when the patch carries none.
func (s *JiraService) CreateIssue(ctx context.Context, patch models.IssuePatch) (*models.Issue, error) {
	fields := map[string]any{
		"project":   map[string]any{"key": s.projectKey},
		"issuetype": map[string]any{"name": "Task"},
	}
	for k, v := range patch.Fields {
		if k == "status" {
			// Status changes go through transitions, not the create payload.
			continue
		}
		fields[k] = v
	}

	var issue models.Issue
	if err := s.doRequest(ctx, http.MethodPost, "/issue", map[string]any{"fields": fields}, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue applies a field patch to an existing issue.
func (s *JiraService) UpdateIssue(ctx context.Context, key string, patch models.IssuePatch) error {
	if key == "" {
		return fmt.Errorf("%w: issue key", shared.ErrMissingArgument)
	}

	fields := map[string]any{}
	for k, v := range patch.Fields {
		if k == "status" {
			continue
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/issue/%s", url.PathEscape(key))
	return s.doRequest(ctx, http.MethodPut, endpoint, map[string]any{"fields": fields}, nil)
}

// Transitions lists the workflow transitions currently available on an issue.
func (s *JiraService) Transitions(ctx context.Context, key string) ([]models.Transition, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: issue key", shared.ErrMissingArgument)
	}

	var response transitionsResponse
	endpoint := fmt.Sprintf("/issue/%s/transitions", url.PathEscape(key))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response.Transitions, nil
}

// TransitionIssue moves an issue through the identified workflow transition.
func (s *JiraService) TransitionIssue(ctx context.Context, key, transitionID string) error {
	if key == "" || transitionID == "" {
		return fmt.Errorf("%w: issue key and transition id", shared.ErrMissingArgument)
	}

	body := map[string]any{"transition": map[string]any{"id": transitionID}}
	endpoint := fmt.Sprintf("/issue/%s/transitions", url.PathEscape(key))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}
