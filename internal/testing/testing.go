// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/tasksync/internal/models"
)

// MockTracker is a test double for [services.Tracker]
type MockTracker struct {
	Issues []models.Issue
}

func (m *MockTracker) ListIssues(ctx context.Context) ([]models.Issue, error) {
	return m.Issues, nil
}

func (m *MockTracker) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	for _, issue := range m.Issues {
		if issue.Key == key {
			return &issue, nil
		}
	}
	return nil, nil
}

func (m *MockTracker) CreateIssue(ctx context.Context, patch models.IssuePatch) (*models.Issue, error) {
	return &models.Issue{ID: "10000", Key: "MOCK-1", Fields: patch.Fields}, nil
}

func (m *MockTracker) UpdateIssue(ctx context.Context, key string, patch models.IssuePatch) error {
	return nil
}

func (m *MockTracker) Transitions(ctx context.Context, key string) ([]models.Transition, error) {
	return []models.Transition{}, nil
}

func (m *MockTracker) TransitionIssue(ctx context.Context, key, transitionID string) error {
	return nil
}

func (m *MockTracker) Name() string { return "mock-tracker" }

// MockBoard is a test double for [services.Board]
// Created records the patches passed to CreateCard, in order.
type MockBoard struct {
	Cards   []models.Card
	Lists   []models.BoardList
	Created []models.CardPatch
}

func (m *MockBoard) ListCards(ctx context.Context) ([]models.Card, error) {
	return m.Cards, nil
}

func (m *MockBoard) GetCard(ctx context.Context, id string) (*models.Card, error) {
	for _, card := range m.Cards {
		if card.ID == id {
			return &card, nil
		}
	}
	return nil, nil
}

func (m *MockBoard) CreateCard(ctx context.Context, patch models.CardPatch) (*models.Card, error) {
	m.Created = append(m.Created, patch)
	return &models.Card{ID: "mock-card"}, nil
}

func (m *MockBoard) UpdateCard(ctx context.Context, id string, patch models.CardPatch) error {
	return nil
}

func (m *MockBoard) ListLists(ctx context.Context) ([]models.BoardList, error) {
	return m.Lists, nil
}

func (m *MockBoard) ListMembers(ctx context.Context) ([]models.Member, error) {
	return []models.Member{}, nil
}

func (m *MockBoard) Name() string { return "mock-board" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
