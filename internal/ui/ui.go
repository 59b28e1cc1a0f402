package ui

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tasksync/internal/mapping"
	"github.com/desertthunder/tasksync/internal/models"
	"github.com/desertthunder/tasksync/internal/services"
	"github.com/desertthunder/tasksync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	IssueListView ViewState = iota
	PreviewView
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	tracker      services.Tracker
	board        services.Board
	engine       tasks.SyncEngine
	mapper       *mapping.Mapper
	width        int
	height       int
	issueList    list.Model
	issues       []models.Issue
	lists        []models.BoardList
	selected     *models.Issue
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	synced       bool
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.restart, k.quit},
	}
}

var _ list.Item = issueItem{}

// issueItem wraps [models.Issue] to implement [list.Item].
type issueItem struct {
	issue models.Issue
}

func (i issueItem) FilterValue() string { return i.issue.Key }
func (i issueItem) Title() string {
	return fmt.Sprintf("%s  %s", i.issue.Key, i.issue.Summary())
}
func (i issueItem) Description() string {
	desc := i.issue.StatusName()
	if due := i.issue.DueDate(); due != "" {
		desc = fmt.Sprintf("%s • due %s", desc, due)
	}
	return desc
}

type issuesFetchedMsg struct {
	issues []models.Issue
	lists  []models.BoardList
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
// A nil mapper falls back to the default mapping tables.
func NewModel(ctx context.Context, tracker services.Tracker, board services.Board, engine tasks.SyncEngine, mapper *mapping.Mapper) *Model {
	if mapper == nil {
		mapper = mapping.New(nil, nil)
	}

	return &Model{
		ctx:     ctx,
		view:    IssueListView,
		tracker: tracker,
		board:   board,
		engine:  engine,
		mapper:  mapper,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching issues and board lists.
func (m *Model) Init() tea.Cmd {
	return m.fetchIssues()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.issueList.Width() == 0 {
			m.issueList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case IssueListView:
			return m.handleIssueListKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case issuesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.issues = msg.issues
		m.lists = msg.lists
		items := make([]list.Item, len(msg.issues))
		for i, issue := range msg.issues {
			items[i] = issueItem{issue: issue}
		}
		m.issueList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.issueList.Title = fmt.Sprintf("%s Issues", m.tracker.Name())
		m.issueList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.err = msg.err
		m.synced = msg.err == nil
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case IssueListView:
		return m.renderIssueList()
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleIssueListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.issueList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(issueItem); ok {
				issue := item.issue
				m.selected = &issue
				m.view = PreviewView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.issueList, cmd = m.issueList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = IssueListView
		m.selected = nil
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = PreviewView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = IssueListView
		m.selected = nil
		m.synced = false
		m.err = nil
		return m, m.fetchIssues()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == IssueListView {
		m.issueList, cmd = m.issueList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchIssues() tea.Cmd {
	return func() tea.Msg {
		issues, err := m.tracker.ListIssues(m.ctx)
		if err != nil {
			return issuesFetchedMsg{err: err}
		}
		lists, err := m.board.ListLists(m.ctx)
		return issuesFetchedMsg{issues: issues, lists: lists, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan
	key := m.selected.Key

	go func() {
		err := m.engine.RunSingle(m.ctx, key, models.DirectionJiraToTrello, progress)
		progress <- tasks.ProgressUpdate{Phase: tasks.Completed}
		close(progress)
		m.err = err
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderIssueList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.issueList.View(), helpView)
}

func (m *Model) renderPreview() string {
	title := styles.title.Render(fmt.Sprintf("Preview: %s", m.selected.Key))

	patch := m.mapper.IssueToCard(*m.selected, m.lists)
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preview := fmt.Sprintf("\nIssue: %s (%s)\n\nCard after translation:\n", m.selected.Summary(), m.selected.StatusName())
	for _, k := range keys {
		preview += fmt.Sprintf("  %-10s %v\n", k, patch[k])
	}

	syncKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sync"))
	helpKeys := []key.Binding{syncKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, preview, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync '%s' to %s?", m.selected.Key, m.board.Name()))
	info := fmt.Sprintf("\nIssue: %s\nSummary: %s\n", m.selected.Key, m.selected.Summary())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Issue")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSource:
		phase = "Fetching issue..."
	case tasks.FetchLists:
		phase = "Fetching board lists..."
	case tasks.SyncItems:
		phase = fmt.Sprintf("Syncing (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	title := styles.ok.Render("✓ Sync Complete!")
	info := ""
	if m.selected != nil {
		info = fmt.Sprintf("\n%s is now linked to a card on %s.\n", m.selected.Key, m.board.Name())
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
