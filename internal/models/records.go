package models

// Direction identifies which way a sync run moves data.
type Direction string

const (
	DirectionJiraToTrello  Direction = "jira_to_trello"
	DirectionTrelloToJira  Direction = "trello_to_jira"
	DirectionBidirectional Direction = "bidirectional"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionJiraToTrello, DirectionTrelloToJira, DirectionBidirectional:
		return true
	}
	return false
}

// Frequency identifies how often a profile's sync is triggered.
type Frequency string

const (
	FrequencyManual Frequency = "manual"
	FrequencyHourly Frequency = "hourly"
	FrequencyDaily  Frequency = "daily"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyManual, FrequencyHourly, FrequencyDaily:
		return true
	}
	return false
}

// SyncType records whether a run was started by an operator or the scheduler.
type SyncType string

const (
	SyncManual    SyncType = "manual"
	SyncAutomatic SyncType = "automatic"
)

// SyncState tracks the lifecycle of a ledger entry.
type SyncState string

const (
	StatePending SyncState = "pending"
	StateSynced  SyncState = "synced"
	StateError   SyncState = "error"
)

// RunStatus is the derived outcome of a completed sync run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// RunStatusForCounts derives the run status from per-item outcomes.
// A run with no errors succeeded, a run where every attempted item
// errored failed, and anything in between is partial.
func RunStatusForCounts(synced, errored int) RunStatus {
	if errored == 0 {
		return RunSuccess
	}
	if synced == 0 {
		return RunFailed
	}
	return RunPartial
}

// FieldMapping pairs a Jira field path with the Trello card attribute it feeds.
// The Jira side may be a dotted path into the issue field tree (e.g. "assignee.displayName").
type FieldMapping struct {
	JiraField   string `json:"jira_field" toml:"jira_field"`
	TrelloField string `json:"trello_field" toml:"trello_field"`
}

// StatusMapping pairs a Jira status name with the Trello list name it corresponds to.
// Matching against live statuses and lists is case-insensitive.
type StatusMapping struct {
	JiraStatus   string `json:"jira_status" toml:"jira_status"`
	TrelloStatus string `json:"trello_status" toml:"trello_status"`
}

// Issue represents a Jira issue with its raw field tree.
// Fields is kept as a generic tree so mapping paths can walk arbitrary nesting.
type Issue struct {
	ID     string         `json:"id"`
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// stringField returns the string value at a top-level key, or "" when absent or not a string.
func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// nestedField returns the string at fields[key][sub], or "" when any step is absent.
func nestedField(fields map[string]any, key, sub string) string {
	if fields == nil {
		return ""
	}
	node, ok := fields[key].(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := node[sub].(string); ok {
		return s
	}
	return ""
}

// Summary returns the issue summary field.
func (i Issue) Summary() string { return stringField(i.Fields, "summary") }

// Description returns the issue description field.
func (i Issue) Description() string { return stringField(i.Fields, "description") }

// StatusName returns the name of the issue's current status.
func (i Issue) StatusName() string { return nestedField(i.Fields, "status", "name") }

// DueDate returns the issue due date as stored by Jira.
func (i Issue) DueDate() string { return stringField(i.Fields, "duedate") }

// AssigneeName returns the display name of the issue assignee.
func (i Issue) AssigneeName() string { return nestedField(i.Fields, "assignee", "displayName") }

// Card represents a Trello card.
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Desc      string   `json:"desc"`
	Due       string   `json:"due"`
	IDList    string   `json:"idList"`
	IDBoard   string   `json:"idBoard"`
	IDMembers []string `json:"idMembers"`
	Closed    bool     `json:"closed"`
	URL       string   `json:"url"`
	Labels    []Label  `json:"labels"`
}

// Label represents a Trello card label.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// BoardList represents a list (column) on a Trello board.
type BoardList struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// Member represents a Trello board member.
type Member struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// Transition represents an available Jira workflow transition.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   struct {
		Name string `json:"name"`
	} `json:"to"`
}

// CardPatch is a partial update for a Trello card, keyed by card attribute.
type CardPatch map[string]any

// IssuePatch is a partial update for a Jira issue. Fields holds the
// nested field tree expected by the Jira edit endpoint.
type IssuePatch struct {
	Fields map[string]any `json:"fields"`
}
